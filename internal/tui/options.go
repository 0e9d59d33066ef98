package tui

import "time"

// Logger receives transition and clipboard diagnostics from the model.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

// UIConfig holds presentation settings for the list view.
type UIConfig struct {
	ShowCounts    bool
	Placeholder   string
	CharLimit     int
	DoubleClick   time.Duration
	ConfirmRemove bool
}

// KeyConfig holds optional list-mode key overrides. Blank fields keep defaults.
type KeyConfig struct {
	Toggle string
	Edit   string
	Remove string
	Copy   string
}

// Option configures a Model.
type Option func(*Model)

// DefaultUIConfig returns the default presentation settings.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		ShowCounts:  true,
		Placeholder: "Enter a new task",
		CharLimit:   200,
		DoubleClick: 400 * time.Millisecond,
	}
}

// WithUIConfig applies presentation settings.
func WithUIConfig(cfg UIConfig) Option {
	return func(m *Model) {
		m.showCounts = cfg.ShowCounts
		m.confirmRemove = cfg.ConfirmRemove
		if cfg.Placeholder != "" {
			m.placeholder = cfg.Placeholder
			m.input.Placeholder = cfg.Placeholder
		}
		if cfg.CharLimit > 0 {
			m.input.CharLimit = cfg.CharLimit
		}
		if cfg.DoubleClick > 0 {
			m.doubleClick = cfg.DoubleClick
		}
	}
}

// WithKeyConfig applies list-mode key overrides.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyKeyConfig(cfg)
	}
}

// WithLogger sets the transition logger.
func WithLogger(logger Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClipboard replaces the clipboard writer used by the copy binding.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithClock replaces the clock used for double-click detection.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// nopLogger discards all model diagnostics.
type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
