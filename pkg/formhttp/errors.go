package formhttp

import "errors"

var (
	ErrSessionNotFound = errors.New("form session not found")
	ErrTooManySessions = errors.New("too many form sessions")
	ErrUnknownControl  = errors.New("unknown control")
	ErrInvalidFormData = errors.New("invalid form data")
	ErrStoreClosed     = errors.New("form session store is closed")
)
