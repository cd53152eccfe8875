package formhttp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

// Factory builds a fresh document and the form validating it.
type Factory func(ctx context.Context) (*dom.Document, *validator.Form, error)

// Session is one visitor's copy of the form. Handlers must hold the lock
// while touching the document or the form.
type Session struct {
	ID string

	mu      sync.Mutex
	doc     *dom.Document
	form    *validator.Form
	touched time.Time
}

// Document returns the session document.
func (s *Session) Document() *dom.Document { return s.doc }

// Form returns the session form.
func (s *Session) Form() *validator.Form { return s.form }

// Lock acquires exclusive access to the session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the idle time after which a session expires.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions. Zero means unlimited.
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) {
		if n >= 0 {
			s.max = n
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps sessions in memory.
type Store struct {
	factory Factory
	ttl     time.Duration
	max     int
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewStore creates a store building sessions with factory.
func NewStore(factory Factory, opts ...StoreOption) *Store {
	s := &Store{
		factory:  factory,
		ttl:      30 * time.Minute,
		max:      1000,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a new session. Expired sessions are swept first.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	s.Sweep()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	if s.max > 0 && len(s.sessions) >= s.max {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.mu.Unlock()

	doc, form, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:      uuid.NewString(),
		doc:     doc,
		form:    form,
		touched: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		form.Close()
		return nil, ErrStoreClosed
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a live session and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(sess.touched) > s.ttl {
		delete(s.sessions, id)
		go closeSession(sess)
		return nil, ErrSessionNotFound
	}
	sess.touched = now
	return sess, nil
}

// Delete drops the session and closes its form.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	closeSession(sess)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		closeSession(sess)
	}
	return len(expired)
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close drops every session. Create fails afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.closed = true
	s.mu.Unlock()

	for _, sess := range sessions {
		closeSession(sess)
	}
}

func closeSession(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.form.Close()
}
