package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.IDs.Strategy != IDStrategyCounter {
		t.Fatalf("unexpected id strategy %q", cfg.IDs.Strategy)
	}
	if !cfg.UI.ShowCounts || cfg.UI.Placeholder == "" || cfg.UI.DoubleClickMS <= 0 {
		t.Fatalf("unexpected ui defaults %#v", cfg.UI)
	}
	if cfg.Confirm.Remove {
		t.Fatal("expected remove confirmation disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.Placeholder != defaults.UI.Placeholder {
		t.Fatalf("expected default placeholder, got %q", cfg.UI.Placeholder)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("  ", Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IDs.Strategy != IDStrategyCounter {
		t.Fatalf("unexpected strategy %q", cfg.IDs.Strategy)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
level = "debug"

[ids]
strategy = "Clock"

[ui]
show_counts = false
placeholder = "What needs doing?"
double_click_ms = 250

[confirm]
remove = true

[keys]
toggle = "t"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level %q", cfg.Logging.Level)
	}
	if cfg.IDs.Strategy != IDStrategyClock {
		t.Fatalf("unexpected strategy %q", cfg.IDs.Strategy)
	}
	if cfg.UI.ShowCounts {
		t.Fatal("expected counts hidden from config override")
	}
	if cfg.UI.Placeholder != "What needs doing?" || cfg.UI.DoubleClickMS != 250 {
		t.Fatalf("unexpected ui config %#v", cfg.UI)
	}
	if cfg.UI.CharLimit != Default().UI.CharLimit {
		t.Fatalf("unset char_limit should keep default, got %d", cfg.UI.CharLimit)
	}
	if !cfg.Confirm.Remove || cfg.Keys.Toggle != "t" {
		t.Fatalf("unexpected confirm/keys %#v %#v", cfg.Confirm, cfg.Keys)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"strategy":  "[ids]\nstrategy = \"uuid\"\n",
		"level":     "[logging]\nlevel = \"loud\"\n",
		"charLimit": "[ui]\nchar_limit = -1\n",
		"dupKeys":   "[keys]\ntoggle = \"x\"\nremove = \"x\"\n",
		"badToml":   "[ui\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default()); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestWriteDefaultCreatesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	created, err := WriteDefault(path)
	if err != nil || !created {
		t.Fatalf("WriteDefault() = %v, %v", created, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "strategy = 'counter'") && !strings.Contains(string(content), `strategy = "counter"`) {
		t.Fatalf("unexpected encoded config %s", content)
	}
	cfg, err := Load(path, Config{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.Placeholder != Default().UI.Placeholder {
		t.Fatalf("round-trip placeholder = %q", cfg.UI.Placeholder)
	}

	created, err = WriteDefault(path)
	if err != nil || created {
		t.Fatalf("second WriteDefault() = %v, %v", created, err)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
