package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantFields []string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:       "negative granularity",
			modify:     func(c *Config) { c.Smoothing.Granularity = -2 },
			wantFields: []string{"smoothing.granularity"},
		},
		{
			name: "granularity checked even when smoothing is off",
			modify: func(c *Config) {
				c.Smoothing.Enabled = false
				c.Smoothing.Granularity = 0
			},
			wantFields: []string{"smoothing.granularity"},
		},
		{
			name:       "granularity too large",
			modify:     func(c *Config) { c.Smoothing.Granularity = 65 },
			wantFields: []string{"smoothing.granularity"},
		},
		{
			name:       "thin line",
			modify:     func(c *Config) { c.Drawing.LineWidth = 0.5 },
			wantFields: []string{"drawing.line_width"},
		},
		{
			name:       "bad color",
			modify:     func(c *Config) { c.Drawing.LineColor = "mauve" },
			wantFields: []string{"drawing.line_color"},
		},
		{
			name:       "bad port",
			modify:     func(c *Config) { c.Share.Port = 70000 },
			wantFields: []string{"share.port"},
		},
		{
			name: "port ignored when sharing is off",
			modify: func(c *Config) {
				c.Share.Enabled = false
				c.Share.Port = 0
			},
		},
		{
			name:       "bad log level",
			modify:     func(c *Config) { c.Logging.Level = "loud" },
			wantFields: []string{"logging.level"},
		},
		{
			name: "several at once",
			modify: func(c *Config) {
				c.Drawing.LineWidth = 100
				c.Smoothing.Granularity = 0
			},
			wantFields: []string{"drawing.line_width", "smoothing.granularity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()

			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() = %v, want fields %v", errs, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if errs[i].Field != f {
					t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, f)
				}
			}
		})
	}
}

func TestValidationErrorsError(t *testing.T) {
	if got := ValidationErrors(nil).Error(); got != "" {
		t.Errorf("empty ValidationErrors.Error() = %q, want empty", got)
	}

	one := ValidationErrors{{Field: "smoothing.granularity", Value: 0, Message: "must be at least 1"}}
	if got, want := one.Error(), "smoothing.granularity: must be at least 1 (got: 0)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	two := append(one, ValidationError{Field: "share.port", Value: -1, Message: "bad"})
	got := two.Error()
	if !strings.HasPrefix(got, "2 validation errors:") || !strings.Contains(got, "share.port") {
		t.Errorf("Error() = %q, want a numbered list of both errors", got)
	}
}
