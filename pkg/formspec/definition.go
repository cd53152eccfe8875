package formspec

import (
	"errors"
	"io"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	fv "github.com/dmitrymomot/formguard/pkg/validator"
)

// Rule types understood by Apply.
const (
	TypeRequired     = "required"
	TypeEmail        = "email"
	TypePhone        = "phone"
	TypeDate         = "date"
	TypeLength       = "length"
	TypeDateSequence = "date_sequence"
	TypeRemote       = "remote"
)

// Definition is the root of a form definition file.
type Definition struct {
	Scope         string      `yaml:"scope" validate:"omitempty,selector"`
	DisplayMode   string      `yaml:"display_mode" validate:"omitempty,mode"`
	SubmitMode    string      `yaml:"submit_mode" validate:"omitempty,mode"`
	SubmitControl string      `yaml:"submit_control" validate:"omitempty,selector"`
	DateWindow    *int        `yaml:"date_window" validate:"omitempty,min=0,max=100"`
	Fields        []FieldSpec `yaml:"fields" validate:"required,min=1,dive"`
}

// FieldSpec describes one validated control.
type FieldSpec struct {
	Control   string     `yaml:"control" validate:"required,selector"`
	Name      string     `yaml:"name"`
	Indicator string     `yaml:"indicator" validate:"omitempty,selector"`
	Rules     []RuleSpec `yaml:"rules" validate:"required,min=1,dive"`
}

// RuleSpec binds one rule. Events default to "change" and the trigger to the
// field's own control.
type RuleSpec struct {
	Type    string        `yaml:"type" validate:"required,oneof=required email phone date length date_sequence remote"`
	Events  string        `yaml:"events"`
	Trigger string        `yaml:"trigger" validate:"omitempty,selector"`
	Length  int           `yaml:"length" validate:"required_if=Type length,gte=0"`
	Other   string        `yaml:"other" validate:"required_if=Type date_sequence,omitempty,selector"`
	Label   string        `yaml:"label"`
	Compare string        `yaml:"compare" validate:"required_if=Type date_sequence,omitempty,comparator"`
	Lookup  string        `yaml:"lookup" validate:"required_if=Type remote"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0s"`
}

// Parse decodes and checks a definition. Unknown keys are rejected.
func Parse(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseFS reads the definition stored at name in fsys.
func ParseFS(fsys fs.FS, name string) (*Definition, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks the struct tags of the whole definition.
func (d *Definition) Validate() error {
	if err := validate().Struct(d); err != nil {
		return errors.Join(ErrInvalidDefinition, convertErrors(err))
	}
	return nil
}

// Window returns the configured two-digit year pivot or the default.
func (d *Definition) Window() int {
	if d.DateWindow == nil {
		return fv.DefaultDateWindow
	}
	return *d.DateWindow
}

// Options converts the form level settings into validator options. Modes
// were checked by Validate, so parse errors cannot occur here.
func (d *Definition) Options() []fv.Option {
	opts := []fv.Option{fv.WithDateWindow(d.Window())}
	if d.Scope != "" {
		opts = append(opts, fv.WithScope(d.Scope))
	}
	if d.DisplayMode != "" {
		m, _ := fv.ParseMode(d.DisplayMode)
		opts = append(opts, fv.WithDisplayMode(m))
	}
	if d.SubmitMode != "" {
		m, _ := fv.ParseMode(d.SubmitMode)
		opts = append(opts, fv.WithSubmitMode(m))
	}
	if d.SubmitControl != "" {
		opts = append(opts, fv.WithSubmitControl(d.SubmitControl))
	}
	return opts
}

func (r RuleSpec) events() string {
	if r.Events == "" {
		return "change"
	}
	return r.Events
}
