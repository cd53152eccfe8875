package validator

import "fmt"

// Check inspects a field and reports problems through Field.Fail and
// Field.Warn. Reporting nothing means the field passes.
type Check func(f *Field)

// Rule is an immutable, named check. The name is the deduplication key
// inside a field, so parameterized factories encode their parameters in it.
// A single *Rule may be shared by any number of fields.
type Rule struct {
	name  string
	check Check
}

// NewRule creates a rule. It panics when name is empty or check is nil;
// rules are built at startup and a broken one should stop the program.
func NewRule(name string, check Check) *Rule {
	if name == "" || check == nil {
		panic(fmt.Errorf("%w: %q", ErrInvalidRule, name))
	}
	return &Rule{name: name, check: check}
}

// Name returns the rule name.
func (r *Rule) Name() string { return r.name }
