package formspec

import (
	"fmt"

	"github.com/dmitrymomot/formguard/pkg/dom"
	fv "github.com/dmitrymomot/formguard/pkg/validator"
)

// Lookups resolves remote lookup names. *lookup.Registry satisfies it.
type Lookups interface {
	Get(name string) (fv.Lookup, error)
}

// Build creates a form over doc from def and binds every field.
// Extra options are applied after the definition's own.
func Build(doc *dom.Document, def *Definition, lookups Lookups, opts ...fv.Option) (*fv.Form, error) {
	form := fv.New(doc, append(def.Options(), opts...)...)
	if err := Apply(form, def, lookups); err != nil {
		form.Close()
		return nil, err
	}
	return form, nil
}

// Apply binds the fields of def to form and runs one live pass. Selectors
// are resolved in the form's document.
func Apply(form *fv.Form, def *Definition, lookups Lookups) error {
	doc := form.Document()

	// Register every field first so rules can refer to any of them by name.
	fields := make([]*fv.Field, len(def.Fields))
	for i, fs := range def.Fields {
		control, err := find(doc, fs.Control)
		if err != nil {
			return fmt.Errorf("fields[%d]: %w", i, err)
		}
		var indicator *dom.Element
		if fs.Indicator != "" {
			if indicator, err = find(doc, fs.Indicator); err != nil {
				return fmt.Errorf("fields[%d].indicator: %w", i, err)
			}
		}
		fields[i] = form.AddField(control, fs.Name, indicator)
	}

	for i, fs := range def.Fields {
		for j, rs := range fs.Rules {
			if err := bind(form, fields[i], rs, def.Window(), lookups); err != nil {
				return fmt.Errorf("fields[%d].rules[%d]: %w", i, j, err)
			}
		}
	}
	form.ValidateAll(false)
	return nil
}

func bind(form *fv.Form, field *fv.Field, rs RuleSpec, window int, lookups Lookups) error {
	doc := form.Document()
	control := field.Control()

	trigger := control
	if rs.Trigger != "" {
		el, err := find(doc, rs.Trigger)
		if err != nil {
			return err
		}
		trigger = el
	}

	var rule *fv.Rule
	switch rs.Type {
	case TypeRequired:
		if rs.Trigger == "" && rs.Events == "" {
			form.Require(control, field.Name(), field.Indicator())
			return nil
		}
		rule = fv.Required
	case TypeEmail:
		rule = fv.Email
	case TypePhone:
		rule = fv.Phone
	case TypeDate:
		rule = fv.Date(window)
	case TypeLength:
		rule = fv.Length(rs.Length)
	case TypeDateSequence:
		other, err := find(doc, rs.Other)
		if err != nil {
			return err
		}
		cmp, err := fv.ParseComparator(rs.Compare)
		if err != nil {
			return err
		}
		label := rs.Label
		if label == "" {
			if f := form.Field(other); f != nil {
				label = f.Name()
			} else {
				label = other.ID()
			}
		}
		rule = fv.DateSequence(other, label, cmp)
		// the ordering also changes when the other date does
		field.AddRule(other, rs.events(), rule)
	case TypeRemote:
		if lookups == nil {
			return ErrNoLookups
		}
		fn, err := lookups.Get(rs.Lookup)
		if err != nil {
			return err
		}
		rule = fv.Remote("remote:"+rs.Lookup, fn, rs.Timeout)
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidDefinition, rs.Type)
	}

	field.AddRule(trigger, rs.events(), rule)
	return nil
}

func find(doc *dom.Document, selector string) (*dom.Element, error) {
	el, err := doc.Query(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrControlNotFound, selector)
	}
	return el, nil
}
