package formhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/logger"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

// Client selects the attributes wired onto the form controls.
type Client string

const (
	ClientHTMX     Client = "htmx"
	ClientDataStar Client = "datastar"
)

// Config holds the HTTP form settings.
type Config struct {
	// LookupWait bounds how long a request waits for remote lookups before
	// answering with a pending warning.
	LookupWait time.Duration `env:"HTTP_LOOKUP_WAIT" envDefault:"300ms"`
	// SessionTTL is the idle time after which a session expires.
	SessionTTL time.Duration `env:"FORM_SESSION_TTL" envDefault:"30m"`
	// MaxSessions caps live sessions; zero disables the cap.
	MaxSessions int `env:"FORM_MAX_SESSIONS" envDefault:"1000"`
	// Client is either "htmx" or "datastar".
	Client Client `env:"FORM_CLIENT" envDefault:"htmx"`
	// SweepInterval is how often expired sessions are dropped in the
	// background; zero leaves expiry to requests.
	SweepInterval time.Duration `env:"FORM_SWEEP_INTERVAL" envDefault:"1m"`
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLookupWait overrides Config.LookupWait.
func WithLookupWait(d time.Duration) Option {
	return func(s *Service) { s.wait = d }
}

// WithBasePath sets the prefix the service is mounted under. It is used
// when wiring control attributes and building redirects.
func WithBasePath(path string) Option {
	return func(s *Service) { s.base = path }
}

// WithViews replaces the page templates.
func WithViews(v Views) Option {
	return func(s *Service) { s.views = v }
}

// WithClient overrides Config.Client.
func WithClient(c Client) Option {
	return func(s *Service) { s.client = c }
}

// WithSweepInterval overrides Config.SweepInterval.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) { s.sweepEvery = d }
}

// WithStoreOptions passes extra options to the session store. They apply
// after the ones derived from Config.
func WithStoreOptions(opts ...StoreOption) Option {
	return func(s *Service) { s.storeOpts = append(s.storeOpts, opts...) }
}

// Service exposes form sessions over HTTP.
type Service struct {
	store  *Store
	log    *slog.Logger
	views  Views
	wait   time.Duration
	base   string
	client Client

	storeOpts  []StoreOption
	sweepEvery time.Duration
	stop       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

// NewService creates a service building sessions with factory. When a
// sweep interval is set, a background loop drops expired sessions until
// Close is called.
func NewService(cfg Config, factory Factory, opts ...Option) *Service {
	s := &Service{
		log:        slog.New(slog.DiscardHandler),
		wait:       cfg.LookupWait,
		client:     cfg.Client,
		sweepEvery: cfg.SweepInterval,
		storeOpts: []StoreOption{
			WithTTL(cfg.SessionTTL),
			WithMaxSessions(cfg.MaxSessions),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = NewStore(factory, s.storeOpts...)
	s.views = s.views.withDefaults()
	s.log = s.log.With(logger.Component("formhttp"))

	if s.sweepEvery > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.sweepLoop()
	}
	return s
}

func (s *Service) sweepLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.log.Debug("expired form sessions swept", slog.Int("count", n))
			}
		}
	}
}

// Store returns the session store.
func (s *Service) Store() *Store { return s.store }

// Close stops the sweep loop and drops every session. It is safe to call
// more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
		s.store.Close()
	})
}

// Handle returns the router serving the form routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)

	r.Get("/", s.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.page)
		r.Delete("/", s.remove)
		r.Post("/event", s.event)
		r.Post("/submit", s.submit)
		r.Get("/status", s.status)
	})
	return r
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.Lock()
	s.wire(sess)
	sess.Unlock()

	s.log.InfoContext(r.Context(), "form session created", logger.Form(sess.ID))
	http.Redirect(w, r, s.base+"/"+sess.ID+"/", http.StatusSeeOther)
}

func (s *Service) page(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		_ = renderPage(w, r, http.StatusNotFound, s.views.NotFound(id))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if err := renderPage(w, r, http.StatusOK, s.views.Page(sess.Document())); err != nil {
		s.log.ErrorContext(r.Context(), "render page", logger.Form(sess.ID), logger.Error(err))
	}
}

func (s *Service) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "form session deleted", logger.Form(id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) event(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	values, err := formValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	form := sess.Form()

	key := triggerControl(r)
	control := findControl(form, key)
	if control == nil {
		s.fail(w, r, ErrUnknownControl)
		return
	}
	if err := applyValues(form.Scope(), values); err != nil {
		s.fail(w, r, err)
		return
	}

	event := r.URL.Query().Get("event")
	if event == "" {
		event = "change"
	}
	sess.Document().Dispatch(control, dom.NewEvent(event))
	s.settle(r.Context(), form)

	s.log.DebugContext(r.Context(), "form event",
		logger.Form(sess.ID),
		logger.Field(key),
		logger.Event(event),
		logger.Status(form.CumulativeStatus()),
	)
	s.respond(w, r, http.StatusOK, form)
}

func (s *Service) submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	values, err := formValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	form := sess.Form()

	if err := applyValues(form.Scope(), values); err != nil {
		s.fail(w, r, err)
		return
	}
	s.settle(r.Context(), form)

	ev := s.dispatchSubmit(sess)
	if form.Pending() > 0 {
		// values changed without an event start their lookups here
		s.settle(r.Context(), form)
		ev = s.dispatchSubmit(sess)
	}

	if ev.DefaultPrevented() {
		s.log.InfoContext(r.Context(), "form submission blocked",
			logger.Form(sess.ID),
			logger.Fields(validator.ExtractValidationErrors(form.Errors()).Fields()...),
		)
		s.respond(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	s.log.InfoContext(r.Context(), "form submitted", logger.Form(sess.ID))
	if IsHTMX(r) {
		w.Header().Set(HXTriggerHeader, "form-submitted")
	}
	s.respond(w, r, http.StatusOK, form)
}

func (s *Service) dispatchSubmit(sess *Session) *dom.Event {
	ev := dom.NewEvent("submit")
	sess.Document().Dispatch(sess.Form().Scope(), ev)
	return ev
}

type fieldStatus struct {
	Field    string           `json:"field"`
	Name     string           `json:"name"`
	Status   validator.Status `json:"status"`
	Messages []string         `json:"messages,omitempty"`
}

type formStatus struct {
	ID      string           `json:"id"`
	Status  validator.Status `json:"status"`
	Passed  bool             `json:"passed"`
	Pending int              `json:"pending"`
	Fields  []fieldStatus    `json:"fields"`
}

func (s *Service) status(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	form := sess.Form()
	form.Poll()

	status := form.CumulativeStatus()
	out := formStatus{
		ID:      sess.ID,
		Status:  status,
		Passed:  !status.Has(validator.StatusFail),
		Pending: form.Pending(),
		Fields:  []fieldStatus{},
	}
	for _, f := range form.Fields() {
		out.Fields = append(out.Fields, fieldStatus{
			Field:    f.Key(),
			Name:     f.Name(),
			Status:   f.Status(),
			Messages: f.Messages(),
		})
	}
	sess.Unlock()

	writeJSON(w, http.StatusOK, jsonResponse{Data: out})
}

// settle waits up to the lookup wait for remote results. Lookups still
// running afterwards stay pending and show as warnings.
func (s *Service) settle(ctx context.Context, form *validator.Form) {
	form.Poll()
	if form.Pending() == 0 || s.wait <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()
	if err := form.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.log.WarnContext(ctx, "waiting for lookups", logger.Error(err))
	}
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, code int, form *validator.Form) {
	f, err := s.buildFragment(form, IsHTMX(r) && !IsDataStar(r))
	if err == nil {
		err = render(w, r, code, f)
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "render fragment", logger.Error(err))
	}
}

// buildFragment renders the scope and the summary. For htmx the summary is
// marked for an out-of-band swap.
func (s *Service) buildFragment(form *validator.Form, oob bool) (fragment, error) {
	status := form.CumulativeStatus()
	f := fragment{
		summaryID: form.Theme().SummaryID,
		status:    status,
		pending:   form.Pending(),
	}

	var err error
	if f.scope, err = dom.OuterHTML(scopeTarget(form)); err != nil {
		return f, err
	}
	if summary := form.SummaryElement(); summary != nil {
		if oob {
			summary.SetAttr("hx-swap-oob", "true")
			defer summary.RemoveAttr("hx-swap-oob")
		}
		if f.summary, err = dom.OuterHTML(summary); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrUnknownControl), errors.Is(err, ErrInvalidFormData):
		code = http.StatusBadRequest
	case errors.Is(err, ErrTooManySessions), errors.Is(err, ErrStoreClosed):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "form request failed", logger.Error(err))
	} else {
		s.log.DebugContext(r.Context(), "form request rejected", logger.Error(err))
	}
	writeJSON(w, code, jsonResponse{Error: &errorDetail{
		Code:    http.StatusText(code),
		Message: err.Error(),
	}})
}

type jsonResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body jsonResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func formValues(r *http.Request) (url.Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.Join(ErrInvalidFormData, err)
	}
	return r.PostForm, nil
}
