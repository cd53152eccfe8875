package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment names recognized by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development debugging.
	FormatText Format = "text"
)

var ErrInvalidFormat = errors.New("invalid log format")

// UnmarshalText lets env decoders read the format.
func (f *Format) UnmarshalText(text []byte) error {
	switch v := Format(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case FormatJSON, FormatText:
		*f = v
		return nil
	}
	return fmt.Errorf("%w %q: must be %q or %q", ErrInvalidFormat, text, FormatJSON, FormatText)
}

// Config is the environment-driven logger setup. Level and Format override
// the environment preset when set.
type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"formguard"`
	Level   string `env:"LOG_LEVEL"`
	Format  Format `env:"LOG_FORMAT"`
}

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets output format. It panics on unknown formats so a bad
// setup fails at startup.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("%w %q: must be %q or %q", ErrInvalidFormat, f, FormatJSON, FormatText))
		}
	}
}

// WithOutput sets the destination; nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithContextExtractors registers functions that inject attributes from the
// context of each record, such as the id of the HTTP request that triggered
// a validation pass.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		c.extractors = append(c.extractors, extractors...)
	}
}

// preset is the level and format an environment starts from.
type preset struct {
	level  slog.Level
	format Format
}

var presets = map[string]preset{
	EnvDevelopment: {slog.LevelDebug, FormatText},
	EnvStaging:     {slog.LevelInfo, FormatJSON},
	EnvProduction:  {slog.LevelInfo, FormatJSON},
}

func normalizeEnv(env string) string {
	switch strings.ToLower(env) {
	case EnvProduction, "prod":
		return EnvProduction
	case EnvStaging, "stage":
		return EnvStaging
	}
	return EnvDevelopment
}

// WithEnvironment applies the level and format preset of env and tags every
// record with the service and environment names. Unknown environments fall
// back to development.
func WithEnvironment(env, service string) Option {
	return func(c *config) {
		env = normalizeEnv(env)
		p := presets[env]
		c.level = p.level
		c.format = p.format
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
		c.attrs = append(c.attrs, slog.String("env", env))
	}
}

// WithConfig applies cfg: the environment preset first, then the explicit
// level and format. Like WithFormat it panics on values it cannot parse.
func WithConfig(cfg Config) Option {
	return func(c *config) {
		WithEnvironment(cfg.Env, cfg.Service)(c)
		if cfg.Level != "" {
			var l slog.Level
			if err := l.UnmarshalText([]byte(cfg.Level)); err != nil {
				panic(fmt.Errorf("invalid log level %q: %w", cfg.Level, err))
			}
			c.level = l
		}
		if cfg.Format != "" {
			WithFormat(cfg.Format)(c)
		}
	}
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// defaultConfig is JSON at INFO on stdout.
func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

// New creates a logger from opts. Context extractors run on every record.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}
	return slog.New(withContextAttrs(handler, cfg.extractors...))
}
