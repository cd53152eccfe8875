package formspec

import "errors"

var (
	ErrInvalidDefinition = errors.New("invalid form definition")
	ErrDecode            = errors.New("failed to decode form definition")
	ErrControlNotFound   = errors.New("control not found")
	ErrNoLookups         = errors.New("remote rule used without a lookup registry")
)
