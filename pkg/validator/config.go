package validator

import "github.com/dmitrymomot/formguard/pkg/dom"

// Config is the environment-driven form configuration.
type Config struct {
	// Scope is the selector of the validated subtree.
	Scope string `env:"FORM_SCOPE"`
	// DisplayMode is used while typing.
	DisplayMode Mode `env:"FORM_DISPLAY_MODE" envDefault:"icon|highlight"`
	// SubmitControl is disabled under the "disable" submit mode.
	SubmitControl string `env:"FORM_SUBMIT_CONTROL" envDefault:"[type=submit]"`
	// SubmitMode is used for submission passes.
	SubmitMode Mode `env:"FORM_SUBMIT_MODE" envDefault:"icon|help|highlight|summary"`
	// DateWindow is the two-digit year pivot.
	DateWindow int `env:"FORM_DATE_WINDOW" envDefault:"50"`
	// RequiredMarker opts controls into the required rule.
	RequiredMarker string `env:"FORM_MARKER_REQUIRED" envDefault:"required"`
	// DateMarker opts controls into the date rule.
	DateMarker string `env:"FORM_MARKER_DATE" envDefault:"date"`
	// EmailMarker opts controls into the email rule.
	EmailMarker string `env:"FORM_MARKER_EMAIL" envDefault:"email"`
}

// Options converts the config into Form options.
func (cfg Config) Options() []Option {
	opts := []Option{
		WithDisplayMode(cfg.DisplayMode),
		WithSubmitMode(cfg.SubmitMode),
		WithDateWindow(cfg.DateWindow),
		WithMarkers(Markers{
			Required: cfg.RequiredMarker,
			Date:     cfg.DateMarker,
			Email:    cfg.EmailMarker,
		}),
	}
	if cfg.Scope != "" {
		opts = append(opts, WithScope(cfg.Scope))
	}
	if cfg.SubmitControl != "" {
		opts = append(opts, WithSubmitControl(cfg.SubmitControl))
	}
	return opts
}

// NewFromConfig creates a Form from cfg. Additional options are applied last.
func NewFromConfig(doc *dom.Document, cfg Config, opts ...Option) *Form {
	return New(doc, append(cfg.Options(), opts...)...)
}
