package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/formguard/pkg/logger"
)

// Lookup checks a value against a remote source. A non-empty message marks
// the value as invalid; an error means the check could not be completed.
type Lookup func(ctx context.Context, value string) (message string, err error)

// LookupState is the lifecycle of one remote check.
type LookupState int

const (
	LookupPending LookupState = iota
	LookupResolved
	LookupFailed
)

func (s LookupState) String() string {
	switch s {
	case LookupPending:
		return "pending"
	case LookupResolved:
		return "resolved"
	case LookupFailed:
		return "failed"
	}
	return "unknown"
}

type lookupCall struct {
	value   string
	state   LookupState
	message string
	err     error
	cancel  context.CancelFunc
}

type lookupResult struct {
	field   *Field
	rule    string
	call    *lookupCall
	message string
	err     error
}

// Remote wraps an asynchronous lookup as a rule. The first pass for a new
// value starts the lookup in the background and warns that the value is
// being checked; a newer value cancels the older lookup. Results are applied
// by Form.Poll or Form.Wait on the caller's goroutine, which re-validates the
// field: a message fails it, a lookup error only warns.
// A timeout of zero means no deadline beyond the form's context.
func Remote(name string, lookup Lookup, timeout time.Duration) *Rule {
	return NewRule(name, func(f *Field) {
		value := strings.TrimSpace(f.Value())
		if value == "" {
			f.cancelLookup(name)
			return
		}

		call := f.lookups[name]
		if call == nil || call.value != value {
			call = f.form.startLookup(f, name, value, lookup, timeout)
		}

		switch call.state {
		case LookupPending:
			f.Warn(fmt.Sprintf("%s is being checked.", f.Name()))
		case LookupResolved:
			if call.message != "" {
				f.Fail(call.message)
			}
		case LookupFailed:
			f.Warn(fmt.Sprintf("%s could not be verified.", f.Name()))
		}
	})
}

// LookupState returns the state of the named remote rule for the field's
// current lookup, and false when no lookup is tracked.
func (f *Field) LookupState(rule string) (LookupState, bool) {
	call, ok := f.lookups[rule]
	if !ok {
		return 0, false
	}
	return call.state, true
}

func (f *Field) cancelLookup(rule string) {
	if call, ok := f.lookups[rule]; ok {
		call.cancel()
		delete(f.lookups, rule)
	}
}

func (f *Form) startLookup(field *Field, rule, value string, lookup Lookup, timeout time.Duration) *lookupCall {
	field.cancelLookup(rule)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(f.ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(f.ctx)
	}
	call := &lookupCall{value: value, state: LookupPending, cancel: cancel}
	if field.lookups == nil {
		field.lookups = make(map[string]*lookupCall)
	}
	field.lookups[rule] = call
	f.pending++

	go func() {
		defer cancel()
		msg, err := lookup(ctx, value)
		select {
		case f.results <- lookupResult{field: field, rule: rule, call: call, message: msg, err: err}:
		case <-f.ctx.Done():
		}
	}()

	f.log.Debug("lookup started", logger.Field(field.key), logger.Rule(rule))
	return call
}

// Pending returns the number of lookups whose results were not applied yet.
func (f *Form) Pending() int { return f.pending }

// Poll applies every lookup result that has already arrived without blocking.
// It returns the number of results applied.
func (f *Form) Poll() int {
	n := 0
	for {
		select {
		case r := <-f.results:
			f.apply(r)
			n++
		default:
			return n
		}
	}
}

// Wait applies lookup results until none are pending or ctx is done.
func (f *Form) Wait(ctx context.Context) error {
	for f.pending > 0 {
		select {
		case r := <-f.results:
			f.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		case <-f.ctx.Done():
			return f.ctx.Err()
		}
	}
	return nil
}

func (f *Form) apply(r lookupResult) {
	f.pending--

	field := r.field
	if field.disposed() || field.lookups[r.rule] != r.call {
		return // superseded or cancelled
	}

	if r.err != nil {
		r.call.state = LookupFailed
		r.call.err = r.err
		f.log.Warn("lookup failed",
			logger.Field(field.key),
			logger.Rule(r.rule),
			logger.Error(r.err),
		)
	} else {
		r.call.state = LookupResolved
		r.call.message = r.message
	}

	field.Validate(false)
	f.settle()
}
