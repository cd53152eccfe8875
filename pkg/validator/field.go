package validator

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/logger"
)

// Field validates one control. It is created through Form.AddField and
// disposed automatically once its last rule is removed.
type Field struct {
	form      *Form
	key       string
	control   *dom.Element
	indicator *dom.Element
	name      string

	status     Status
	messages   []message
	rules      []*binding
	listeners  map[trigger]*subscription
	validating bool

	icon    *dom.Element
	lookups map[string]*lookupCall
}

type message struct {
	text   string
	status Status
}

// trigger is a (control, event) pair that re-runs the field.
type trigger struct {
	el    *dom.Element
	event string
}

type subscription struct {
	refs int
	off  func()
}

type binding struct {
	rule     *Rule
	triggers map[trigger]int
}

// AddRule binds rule to every whitespace separated event of the trigger
// control. Registering the same (rule, trigger, event) again only bumps a
// reference count; the listener is attached once. Without a trigger or an
// event nothing is bound.
func (f *Field) AddRule(triggerEl *dom.Element, events string, rule *Rule) *Field {
	evs := strings.Fields(events)
	if rule == nil || triggerEl == nil || len(evs) == 0 || f.disposed() {
		return f
	}
	b := f.binding(rule.name)
	if b == nil {
		b = &binding{rule: rule, triggers: make(map[trigger]int)}
		f.rules = append(f.rules, b)
	}
	for _, ev := range evs {
		key := trigger{el: triggerEl, event: ev}
		b.triggers[key]++
		f.subscribe(key)
	}
	return f
}

// RemoveRule undoes AddRule. The listener of a (trigger, event) pair is
// detached when its count reaches zero, the rule is dropped when it has no
// triggers left and the field is disposed when it has no rules left.
func (f *Field) RemoveRule(triggerEl *dom.Element, events string, rule *Rule) *Field {
	if rule == nil {
		return f
	}
	b := f.binding(rule.name)
	if b == nil {
		return f
	}
	for _, ev := range strings.Fields(events) {
		key := trigger{el: triggerEl, event: ev}
		n := b.triggers[key]
		if n == 0 {
			continue
		}
		if n == 1 {
			delete(b.triggers, key)
		} else {
			b.triggers[key] = n - 1
		}
		f.unsubscribe(key)
	}
	if len(b.triggers) == 0 {
		f.rules = slices.DeleteFunc(f.rules, func(x *binding) bool { return x == b })
		f.cancelLookup(rule.name)
	}
	if len(f.rules) == 0 {
		f.dispose()
	}
	return f
}

// HasRule reports whether a rule with the given name is bound.
func (f *Field) HasRule(name string) bool {
	return f.binding(name) != nil
}

// Rules returns the bound rule names in registration order.
func (f *Field) Rules() []string {
	names := make([]string, 0, len(f.rules))
	for _, b := range f.rules {
		names = append(names, b.rule.name)
	}
	return names
}

func (f *Field) binding(name string) *binding {
	for _, b := range f.rules {
		if b.rule.name == name {
			return b
		}
	}
	return nil
}

func (f *Field) subscribe(key trigger) {
	if f.listeners == nil {
		f.listeners = make(map[trigger]*subscription)
	}
	sub, ok := f.listeners[key]
	if !ok {
		sub = &subscription{off: key.el.On(key.event, f.handle)}
		f.listeners[key] = sub
	}
	sub.refs++
}

func (f *Field) unsubscribe(key trigger) {
	sub, ok := f.listeners[key]
	if !ok {
		return
	}
	sub.refs--
	if sub.refs <= 0 {
		sub.off()
		delete(f.listeners, key)
	}
}

func (f *Field) handle(ev *dom.Event) {
	if f.validating || f.disposed() {
		return
	}
	f.form.log.Debug("field event", logger.Field(f.key), logger.Event(ev.Type))
	f.Validate(false)
	f.form.settle()
}

// Validate clears the previous result, runs every bound rule once and
// renders. Controls inside a disabled subtree are not evaluated. A call made
// while the field is already validating returns the current status.
func (f *Field) Validate(submitting bool) Status {
	if f.validating {
		return f.status
	}
	f.validating = true
	defer func() { f.validating = false }()

	f.status = StatusPass
	f.messages = f.messages[:0]

	if !f.control.InDisabledScope() {
		for _, b := range slices.Clone(f.rules) {
			f.run(b.rule)
		}
	}

	f.Render(submitting)
	return f.status
}

// run evaluates one rule; a panicking check is logged and skipped so the
// remaining rules still run.
func (f *Field) run(r *Rule) {
	defer func() {
		if p := recover(); p != nil {
			f.form.log.Error("validation rule panicked",
				logger.Field(f.key),
				logger.Rule(r.name),
				slog.Any("panic", p),
			)
		}
	}()
	r.check(f)
}

// Fail records a blocking problem.
func (f *Field) Fail(msg string) {
	f.report(StatusFail, "Error: "+msg)
}

// Warn records a non-blocking problem.
func (f *Field) Warn(msg string) {
	f.report(StatusWarn, "Warning: "+msg)
}

func (f *Field) report(s Status, text string) {
	f.status |= s
	for _, m := range f.messages {
		if m.text == text {
			return
		}
	}
	f.messages = append(f.messages, message{text: text, status: s})
}

// Clear resets the field to PASS and removes its messages.
func (f *Field) Clear() {
	f.status = StatusPass
	f.messages = f.messages[:0]
	f.Render(false)
}

// Status returns the result of the last pass.
func (f *Field) Status() Status { return f.status }

// Messages returns the prefixed messages of the last pass in report order.
func (f *Field) Messages() []string {
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.text)
	}
	return out
}

// Message joins all messages with newlines.
func (f *Field) Message() string {
	return strings.Join(f.Messages(), "\n")
}

// Key returns the control identity the field is registered under.
func (f *Field) Key() string { return f.key }

// Name returns the display name used in messages.
func (f *Field) Name() string { return f.name }

// Value returns the control's current value.
func (f *Field) Value() string { return f.control.Value() }

// Control returns the validated control.
func (f *Field) Control() *dom.Element { return f.control }

// Indicator returns the element status is rendered beside.
func (f *Field) Indicator() *dom.Element { return f.indicator }

// Form returns the owning form.
func (f *Field) Form() *Form { return f.form }

func (f *Field) disposed() bool {
	return f.form.fields[f.key] != f
}

func (f *Field) dispose() {
	for key, sub := range f.listeners {
		sub.off()
		delete(f.listeners, key)
	}
	for name := range f.lookups {
		f.cancelLookup(name)
	}
	f.status = StatusPass
	f.messages = nil
	f.resetDecoration(f.findHelp())
	f.form.remove(f)
	f.form.log.Debug("field disposed", logger.Field(f.key))
}
