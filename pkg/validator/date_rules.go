package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/formguard/pkg/dom"
)

// Date fails for non-empty values that are not a valid calendar date.
func Date(window int) *Rule {
	return NewRule("date", func(f *Field) {
		v := strings.TrimSpace(f.Value())
		if v == "" {
			return
		}
		if _, ok := ParseDate(v, window); !ok {
			f.Fail(fmt.Sprintf("%s must be a valid date (MM/DD/YYYY).", f.Name()))
		}
	})
}

// DefaultDate is Date with the default two-digit year window.
var DefaultDate = Date(DefaultDateWindow)

// Comparator orders two dates.
type Comparator string

const (
	Before     Comparator = "<"
	After      Comparator = ">"
	OnOrBefore Comparator = "<="
	OnOrAfter  Comparator = ">="
	SameDay    Comparator = "="
	OtherDay   Comparator = "!="
)

// ParseComparator accepts the ASCII operators and their unicode forms.
func ParseComparator(s string) (Comparator, error) {
	switch strings.TrimSpace(s) {
	case "<":
		return Before, nil
	case ">":
		return After, nil
	case "<=", "≤":
		return OnOrBefore, nil
	case ">=", "≥":
		return OnOrAfter, nil
	case "=", "==":
		return SameDay, nil
	case "!=", "≠", "<>":
		return OtherDay, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownComparator, s)
}

func (c Comparator) compare(a, b time.Time) bool {
	switch c {
	case Before:
		return a.Before(b)
	case After:
		return a.After(b)
	case OnOrBefore:
		return !a.After(b)
	case OnOrAfter:
		return !a.Before(b)
	case SameDay:
		return a.Equal(b)
	case OtherDay:
		return !a.Equal(b)
	}
	return false
}

func (c Comparator) phrase() string {
	switch c {
	case Before:
		return "before"
	case After:
		return "after"
	case OnOrBefore:
		return "on or before"
	case OnOrAfter:
		return "on or after"
	case SameDay:
		return "the same as"
	case OtherDay:
		return "different from"
	}
	return string(c)
}

// DateSequence requires the field's date to relate to the date held by
// other under cmp, e.g. a start date Before an end date. It stays silent
// while either side is empty or not a valid date. Unknown comparators panic.
func DateSequence(other *dom.Element, label string, cmp Comparator) *Rule {
	if _, err := ParseComparator(string(cmp)); err != nil {
		panic(err)
	}
	name := fmt.Sprintf("date_sequence:%s:%s", sequenceKey(other), cmp)
	return NewRule(name, func(f *Field) {
		window := f.form.cfg.dateWindow
		a, ok := ParseDate(f.Value(), window)
		if !ok {
			return
		}
		b, ok := ParseDate(other.Value(), window)
		if !ok {
			return
		}
		if !cmp.compare(a, b) {
			f.Fail(fmt.Sprintf("%s must be %s %s.", f.Name(), cmp.phrase(), label))
		}
	})
}

// sequenceKey names the other control in a rule name. Controls without an
// id or name are keyed by identity so two of them never share a rule.
func sequenceKey(el *dom.Element) string {
	if id := el.ID(); id != "" {
		return id
	}
	if name := el.Name(); name != "" {
		return "[name=" + name + "]"
	}
	return fmt.Sprintf("%p", el)
}
