package validator

import (
	"context"
	"log/slog"
)

// Option configures a Form.
type Option func(*config)

type config struct {
	scope          string
	display        Mode
	submit         Mode
	submitSelector string
	theme          Theme
	markers        Markers
	dateWindow     int
	postHook       func(passed bool)
	logger         *slog.Logger
	ctx            context.Context
}

func defaultConfig() *config {
	return &config{
		display:        DefaultDisplayMode,
		submit:         DefaultSubmitMode,
		submitSelector: `[type="submit"]`,
		theme:          DefaultTheme(),
		markers:        DefaultMarkers(),
		dateWindow:     DefaultDateWindow,
		ctx:            context.Background(),
	}
}

// WithScope limits the form to the subtree matched by selector. A selector
// that matches nothing falls back to the whole document.
func WithScope(selector string) Option {
	return func(c *config) { c.scope = selector }
}

// WithDisplayMode sets decorations used during live validation.
func WithDisplayMode(m Mode) Option {
	return func(c *config) { c.display = m }
}

// WithSubmitMode sets decorations and behavior used for submission passes.
func WithSubmitMode(m Mode) Option {
	return func(c *config) { c.submit = m }
}

// WithSubmitControl sets the selector of the control disabled under ModeDisable.
func WithSubmitControl(selector string) Option {
	return func(c *config) { c.submitSelector = selector }
}

// WithTheme replaces the theme. Nil maps are filled from DefaultTheme.
func WithTheme(t Theme) Option {
	return func(c *config) {
		def := DefaultTheme()
		if t.Icons == nil {
			t.Icons = def.Icons
		}
		if t.Colors == nil {
			t.Colors = def.Colors
		}
		if t.Highlights == nil {
			t.Highlights = def.Highlights
		}
		c.theme = t
	}
}

// WithMarkers overrides the marker classes scanned at construction.
// Empty entries disable that marker.
func WithMarkers(m Markers) Option {
	return func(c *config) { c.markers = m }
}

// WithDateWindow sets the two-digit year pivot. Values outside 0..100 are ignored.
func WithDateWindow(window int) Option {
	return func(c *config) {
		if window >= 0 && window <= 100 {
			c.dateWindow = window
		}
	}
}

// WithPostHook registers a callback invoked after every full-form pass with
// whether the form is free of failures.
func WithPostHook(fn func(passed bool)) Option {
	return func(c *config) { c.postHook = fn }
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithContext sets the parent context of remote lookups. Cancelling it
// cancels every in-flight lookup.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
