// Package validator is a live form validation engine working on a parsed
// HTML document.
//
// A Form owns the fields of one scope of a dom.Document. Each Field wraps a
// control and a list of named rules bound to (trigger, event) pairs; when a
// trigger fires, the field re-runs its rules, collects WARN and FAIL
// messages and decorates the page with an icon, a highlight class and a
// help text according to the configured Mode. The form status is the bitwise
// OR of its field statuses and submission is blocked while any field fails.
//
// # Architecture
//
// Rule values are immutable (name, check) pairs and may be shared between
// fields. Binding the same rule to the same trigger and event twice only
// bumps a reference count, so listeners are attached once and removed when
// the last binding goes away. A field with no rules left is disposed.
//
// Built-in rules cover required values, exact length, email lists, phone
// numbers, calendar dates and date ordering between two controls. Controls
// carrying the marker classes ("required", "date" and "email" by default)
// get the matching rule when the Form is created.
//
// Remote wraps an asynchronous lookup. Lookups run on their own goroutines
// and hand results back through a channel; Form.Poll and Form.Wait apply
// them on the caller's goroutine, so a Form and its document are only ever
// touched from one goroutine.
//
// # Usage
//
//	doc, err := dom.ParseString(page)
//	if err != nil {
//	    return err
//	}
//	form := validator.New(doc,
//	    validator.WithScope("#signup"),
//	    validator.WithSubmitMode(validator.DefaultSubmitMode|validator.ModeDisable),
//	    validator.WithLogger(log),
//	)
//	defer form.Close()
//
//	start, end := doc.ByID("start"), doc.ByID("end")
//	form.AddField(start, "", nil).
//	    AddRule(start, "change", validator.DefaultDate).
//	    AddRule(end, "change", validator.DateSequence(end, "End Date", validator.Before))
//
//	if !form.IsSubmissionValid(nil) {
//	    return form.Errors()
//	}
//
// # Error Handling
//
// Form.Errors returns ValidationErrors, which matches ErrValidationFailed
// with errors.Is and can be unpacked with ExtractValidationErrors.
// Misconfiguration such as an empty rule name or an unknown date comparator
// panics at construction.
package validator
