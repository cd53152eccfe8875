package lookup

import "errors"

var (
	ErrLookupFailed  = errors.New("lookup failed")
	ErrUnknownLookup = errors.New("unknown lookup")
	ErrDuplicateName = errors.New("lookup already registered")
	ErrUnknownKind   = errors.New("unknown lookup kind")
)
