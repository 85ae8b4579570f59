package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"LocalBoard/internal/logging"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRootRejectsNonLinkArgument(t *testing.T) {
	err := execute(t, "somewhere:8888")
	if err == nil || !strings.Contains(err.Error(), "localboard://") {
		t.Fatalf("Execute() error = %v, want a complaint about the link scheme", err)
	}
}

func TestJoinRejectsBadLinks(t *testing.T) {
	for _, link := range []string{"http://10.0.0.1:8888", "localboard://10.0.0.1"} {
		t.Run(link, func(t *testing.T) {
			if err := execute(t, "join", link); err == nil {
				t.Errorf("join %q: error = nil, want error", link)
			}
		})
	}
}

func TestJoinRequiresOneLink(t *testing.T) {
	if err := execute(t, "join"); err == nil {
		t.Error("join without a link: error = nil, want error")
	}
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() { logging.SetLogger(nil) })

	opts := &options{}
	root := newRootCmd(opts)
	root.SetErr(&bytes.Buffer{})
	if err := root.PersistentFlags().Parse([]string{"--multi-line=false", "--clear-on-finish", "--log-level=debug", "--no-share"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := loadConfig(root, opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Drawing.MultiLineMode {
		t.Error("MultiLineMode = true, want false from --multi-line=false")
	}
	if !cfg.Drawing.ClearOnFinish {
		t.Error("ClearOnFinish = false, want true from --clear-on-finish")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Share.Enabled {
		t.Error("Share.Enabled = true, want false from --no-share")
	}
}

func TestLoadConfigKeepsFileValuesWithoutFlags(t *testing.T) {
	t.Cleanup(func() { logging.SetLogger(nil) })

	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	data := "drawing:\n  multi_line_mode: false\nsmoothing:\n  granularity: 5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	opts := &options{configFile: path}
	root := newRootCmd(opts)
	cfg, err := loadConfig(root, opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Drawing.MultiLineMode {
		t.Error("MultiLineMode = true, want false from the config file")
	}
	if cfg.Smoothing.Granularity != 5 {
		t.Errorf("Granularity = %d, want 5", cfg.Smoothing.Granularity)
	}
	if !cfg.Share.Enabled {
		t.Error("Share.Enabled = false, want the default true")
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	t.Cleanup(func() { logging.SetLogger(nil) })

	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte("smoothing:\n  granularity: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	opts := &options{configFile: path}
	if _, err := loadConfig(newRootCmd(opts), opts); err == nil {
		t.Fatal("loadConfig() error = nil, want validation error")
	}
}
