package validator

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/logger"
)

// requiredEvents re-run the required rule on commit and on every edit.
const requiredEvents = "change input"

// Form owns the fields of one scope of a document, aggregates their status
// and gates submission.
type Form struct {
	doc    *dom.Document
	scope  *dom.Element
	submit *dom.Element
	cfg    *config
	log    *slog.Logger

	fields map[string]*Field
	order  []*Field

	summary   *dom.Element
	offSubmit func()

	ctx     context.Context
	cancel  context.CancelFunc
	results chan lookupResult
	pending int
}

// New creates a form over doc. It registers built-in rules on controls
// carrying the marker classes, listens for submit events in the scope and
// runs one live pass.
func New(doc *dom.Document, opts ...Option) *Form {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	f := &Form{
		doc:     doc,
		cfg:     cfg,
		log:     log.With(logger.Component("validator")),
		fields:  make(map[string]*Field),
		results: make(chan lookupResult, 16),
	}
	f.ctx, f.cancel = context.WithCancel(cfg.ctx)

	f.scope = f.resolveScope()
	f.submit = f.resolveSubmit()
	f.offSubmit = f.scope.On("submit", func(ev *dom.Event) {
		f.IsSubmissionValid(ev)
	})

	f.registerMarkers()
	f.ValidateAll(false)
	return f
}

func (f *Form) resolveScope() *dom.Element {
	if f.cfg.scope == "" {
		return f.doc.Root()
	}
	el, err := f.doc.Query(f.cfg.scope)
	if err != nil || el == nil {
		f.log.Warn("scope not found, using whole document",
			slog.String("scope", f.cfg.scope),
			logger.Error(err),
		)
		return f.doc.Root()
	}
	return el
}

func (f *Form) resolveSubmit() *dom.Element {
	if f.cfg.submitSelector == "" {
		return nil
	}
	el, err := f.scope.Query(f.cfg.submitSelector)
	if err != nil {
		f.log.Warn("invalid submit control selector",
			slog.String("selector", f.cfg.submitSelector),
			logger.Error(err),
		)
		return nil
	}
	if el == nil {
		el, _ = f.doc.Query(f.cfg.submitSelector)
	}
	return el
}

func (f *Form) registerMarkers() {
	m := f.cfg.markers
	for _, el := range f.markedControls(m.Required) {
		f.Require(el, "", nil)
	}
	for _, el := range f.markedControls(m.Date) {
		f.AddField(el, "", nil).AddRule(el, "change", Date(f.cfg.dateWindow))
	}
	for _, el := range f.markedControls(m.Email) {
		f.AddField(el, "", nil).AddRule(el, "change", Email)
	}
}

func (f *Form) markedControls(class string) []*dom.Element {
	if class == "" {
		return nil
	}
	els, err := f.scope.QueryAll("." + class)
	if err != nil {
		f.log.Warn("invalid marker class", slog.String("class", class), logger.Error(err))
		return nil
	}
	return slices.DeleteFunc(els, func(el *dom.Element) bool {
		return el.Kind() == dom.KindNone
	})
}

// AddField returns the field registered for control, creating it when the
// control is seen for the first time. The indicator defaults to the label
// pointing at the control, then a label inside the control's field group,
// then the control itself. The name defaults to the indicator's text, then
// to a title-cased control identity.
func (f *Form) AddField(control *dom.Element, name string, indicator *dom.Element) *Field {
	key := f.identity(control, true)
	if field, ok := f.fields[key]; ok {
		return field
	}

	if indicator == nil {
		indicator = f.findIndicator(control)
	}
	if name == "" && indicator != control {
		name = labelName(indicator.Text())
	}
	if name == "" {
		name = displayName(key)
	}

	field := &Field{
		form:      f,
		key:       key,
		control:   control,
		indicator: indicator,
		name:      name,
	}
	f.fields[key] = field
	f.order = append(f.order, field)
	f.log.Debug("field added", logger.Field(key), slog.String("name", name))
	return field
}

// Field returns the field registered for control, or nil.
func (f *Form) Field(control *dom.Element) *Field {
	if control == nil {
		return nil
	}
	return f.fields[f.identity(control, false)]
}

// Fields returns all fields in registration order.
func (f *Form) Fields() []*Field {
	return slices.Clone(f.order)
}

// identity is the control id, falling back to its name. A control with
// neither is given a generated id when assign is set.
func (f *Form) identity(control *dom.Element, assign bool) string {
	if id := control.ID(); id != "" {
		return id
	}
	if name := control.Name(); name != "" {
		return name
	}
	if !assign {
		return ""
	}
	id := "fg-" + uuid.NewString()
	control.SetAttr("id", id)
	return id
}

func (f *Form) findIndicator(control *dom.Element) *dom.Element {
	if id := control.ID(); id != "" {
		labels, _ := f.doc.QueryAll("label")
		for _, l := range labels {
			if v, _ := l.Attr("for"); v == id {
				return l
			}
		}
	}
	if class := f.cfg.theme.GroupClass; class != "" {
		if group, err := control.Closest("." + class); err == nil && group != nil {
			if l, err := group.Query("label"); err == nil && l != nil {
				return l
			}
		}
	}
	return control
}

func (f *Form) remove(field *Field) {
	if f.fields[field.key] == field {
		delete(f.fields, field.key)
	}
	f.order = slices.DeleteFunc(f.order, func(x *Field) bool { return x == field })
}

// Require binds the Required rule to the control's change and input events
// and evaluates the field immediately.
func (f *Form) Require(control *dom.Element, name string, indicator *dom.Element) *Field {
	field := f.AddField(control, name, indicator)
	field.AddRule(control, requiredEvents, Required)
	field.Validate(false)
	return field
}

// Unrequire removes the bindings added by Require. The field is disposed
// when Required was its only rule.
func (f *Form) Unrequire(control *dom.Element) {
	if field := f.Field(control); field != nil {
		field.RemoveRule(control, requiredEvents, Required)
	}
}

// ValidateAll runs every field, then the post-hook, then the submit
// control policy. It returns the cumulative status.
func (f *Form) ValidateAll(submitting bool) Status {
	for _, field := range f.Fields() {
		field.Validate(submitting)
	}
	return f.settle()
}

// settle reports the cumulative result to the post-hook and enables or
// disables the submit control.
func (f *Form) settle() Status {
	status := f.CumulativeStatus()
	passed := !status.Has(StatusFail)

	if f.cfg.postHook != nil {
		f.cfg.postHook(passed)
	}
	if f.submit != nil && f.cfg.submit.Has(ModeDisable) {
		if passed {
			f.submit.RemoveAttr("disabled")
		} else {
			f.submit.SetAttr("disabled", "")
		}
	}
	return status
}

// CumulativeStatus is the bitwise OR of every field's status.
func (f *Form) CumulativeStatus() Status {
	var status Status
	for _, field := range f.order {
		status |= field.status
	}
	return status
}

// IsSubmissionValid runs a submission pass. When any field fails it
// cancels ev (if given), shows the summary under ModeSummary and returns
// false. Warnings do not block submission.
func (f *Form) IsSubmissionValid(ev *dom.Event) bool {
	status := f.ValidateAll(true)
	if !status.Has(StatusFail) {
		f.hideSummary()
		return true
	}

	if ev != nil {
		ev.PreventDefault()
		ev.StopPropagation()
	}
	if f.cfg.submit.Has(ModeSummary) {
		f.showSummary()
	}
	f.log.Info("submission blocked",
		logger.Status(status),
		logger.Fields(f.failing()...),
	)
	return false
}

func (f *Form) failing() []string {
	var keys []string
	for _, field := range f.order {
		if field.status.Has(StatusFail) {
			keys = append(keys, field.key)
		}
	}
	return keys
}

// Errors returns the failing messages as ValidationErrors, or nil.
func (f *Form) Errors() error {
	var errs ValidationErrors
	for _, field := range f.order {
		for _, m := range field.messages {
			if m.status == StatusFail {
				errs.Add(ValidationError{
					Field:   field.key,
					Name:    field.name,
					Message: strings.TrimPrefix(m.text, "Error: "),
				})
			}
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// Document returns the document the form works on.
func (f *Form) Document() *dom.Document { return f.doc }

// Scope returns the validated subtree.
func (f *Form) Scope() *dom.Element { return f.scope }

// Theme returns the decoration vocabulary in use.
func (f *Form) Theme() Theme { return f.cfg.theme }

// Close cancels pending lookups and detaches every listener the form
// registered. Decorations stay in place.
func (f *Form) Close() {
	f.cancel()
	if f.offSubmit != nil {
		f.offSubmit()
		f.offSubmit = nil
	}
	for _, field := range f.order {
		for key, sub := range field.listeners {
			sub.off()
			delete(field.listeners, key)
		}
	}
}
