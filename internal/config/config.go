package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// IDStrategy names the task id generator.
type IDStrategy string

const (
	IDStrategyCounter IDStrategy = "counter"
	IDStrategyClock   IDStrategy = "clock"
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	IDs     IDConfig      `toml:"ids"`
	UI      UIConfig      `toml:"ui"`
	Confirm ConfirmConfig `toml:"confirm"`
	Keys    KeyConfig     `toml:"keys"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type IDConfig struct {
	Strategy IDStrategy `toml:"strategy"` // counter | clock
}

type UIConfig struct {
	ShowCounts    bool   `toml:"show_counts"`
	Placeholder   string `toml:"placeholder"`
	CharLimit     int    `toml:"char_limit"`
	DoubleClickMS int    `toml:"double_click_ms"`
}

type ConfirmConfig struct {
	Remove bool `toml:"remove"`
}

// KeyConfig overrides list-mode bindings. Blank values keep the defaults.
type KeyConfig struct {
	Toggle string `toml:"toggle"`
	Edit   string `toml:"edit"`
	Remove string `toml:"remove"`
	Copy   string `toml:"copy"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".todo/log",
			},
		},
		IDs: IDConfig{
			Strategy: IDStrategyCounter,
		},
		UI: UIConfig{
			ShowCounts:    true,
			Placeholder:   "Enter a new task",
			CharLimit:     200,
			DoubleClickMS: 400,
		},
		Confirm: ConfirmConfig{
			Remove: false,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.IDs.Strategy = IDStrategy(strings.ToLower(strings.TrimSpace(string(cfg.IDs.Strategy))))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	switch c.IDs.Strategy {
	case "", IDStrategyCounter, IDStrategyClock:
	default:
		return fmt.Errorf("invalid ids.strategy: %q", c.IDs.Strategy)
	}

	if c.UI.CharLimit < 0 {
		return errors.New("ui.char_limit must be >= 0")
	}
	if c.UI.DoubleClickMS < 0 {
		return errors.New("ui.double_click_ms must be >= 0")
	}

	seen := map[string]string{}
	for name, raw := range map[string]string{
		"toggle": c.Keys.Toggle,
		"edit":   c.Keys.Edit,
		"remove": c.Keys.Remove,
		"copy":   c.Keys.Copy,
	} {
		k := strings.TrimSpace(raw)
		if k == "" {
			continue
		}
		if other, ok := seen[k]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", name, other, k)
		}
		seen[k] = name
	}

	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return out, nil
}

// WriteDefault writes the default config to path unless a file already exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	content, err := Encode(Default())
	if err != nil {
		return false, err
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
