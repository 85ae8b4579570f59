package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"LocalBoard/internal/capture"
	"LocalBoard/internal/state"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// LOCALBOARD_DRAWING_MULTI_LINE_MODE for drawing.multi_line_mode.
const EnvPrefix = "LOCALBOARD"

// Config represents the complete board configuration
type Config struct {
	Drawing   DrawingConfig   `mapstructure:"drawing"`
	Smoothing SmoothingConfig `mapstructure:"smoothing"`
	Share     ShareConfig     `mapstructure:"share"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DrawingConfig controls how strokes accumulate on the board
type DrawingConfig struct {
	// MultiLineMode keeps every finished stroke. When false each new stroke
	// clears the board first.
	MultiLineMode bool `mapstructure:"multi_line_mode"`
	// ClearOnFinish empties the board as soon as a stroke has been delivered
	ClearOnFinish bool `mapstructure:"clear_on_finish"`
	// LineWidth is the default stroke width (1-50)
	LineWidth float64 `mapstructure:"line_width"`
	// LineColor is a swatch name or #rrggbb
	LineColor string `mapstructure:"line_color"`
}

// SmoothingConfig controls Catmull-Rom resampling of finished strokes
type SmoothingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Granularity is the number of output samples per input segment (1-64)
	Granularity int `mapstructure:"granularity"`
}

// ShareConfig controls the stroke relay used by hosts and clients
type ShareConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Port is the websocket listen port on the host
	Port int `mapstructure:"port"`
	// Advertise announces the host over mDNS
	Advertise bool `mapstructure:"advertise"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Drawing: DrawingConfig{
			MultiLineMode: true,
			ClearOnFinish: false,
			LineWidth:     3,
			LineColor:     "black",
		},
		Smoothing: SmoothingConfig{
			Enabled:     true,
			Granularity: 8,
		},
		Share: ShareConfig{
			Enabled:   true,
			Port:      8888,
			Advertise: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("drawing.multi_line_mode", defaults.Drawing.MultiLineMode)
	v.SetDefault("drawing.clear_on_finish", defaults.Drawing.ClearOnFinish)
	v.SetDefault("drawing.line_width", defaults.Drawing.LineWidth)
	v.SetDefault("drawing.line_color", defaults.Drawing.LineColor)

	v.SetDefault("smoothing.enabled", defaults.Smoothing.Enabled)
	v.SetDefault("smoothing.granularity", defaults.Smoothing.Granularity)

	v.SetDefault("share.enabled", defaults.Share.Enabled)
	v.SetDefault("share.port", defaults.Share.Port)
	v.SetDefault("share.advertise", defaults.Share.Advertise)

	v.SetDefault("logging.level", defaults.Logging.Level)
}

// New returns a viper instance with defaults and environment overrides
// registered. If cfgFile is empty the standard locations are searched.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadIn reads the config file into v. A missing file in the default
// locations is not an error; an explicit file that cannot be read is.
func ReadIn(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// CaptureSettings converts the drawing and smoothing sections into the
// settings a capture controller reads at pointer-down. Call it on a
// validated Config; an unparsable color falls back to black.
func (c *Config) CaptureSettings() capture.Settings {
	col, err := state.ParseColor(c.Drawing.LineColor)
	if err != nil {
		col, _ = state.ParseColor("black")
	}
	return capture.Settings{
		MultiLineMode:      c.Drawing.MultiLineMode,
		ClearOnFinish:      c.Drawing.ClearOnFinish,
		DefaultLineWidth:   float32(c.Drawing.LineWidth),
		DefaultLineColor:   col,
		EnableSmoothedPath: c.Smoothing.Enabled,
		Granularity:        c.Smoothing.Granularity,
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "localboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".localboard"
	}
	return filepath.Join(home, ".config", "localboard")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
