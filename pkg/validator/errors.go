package validator

import "errors"

var (
	// ErrValidationFailed is returned when a form has failing fields.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidRule is raised when a rule is built without a name or check.
	ErrInvalidRule = errors.New("rule must have a non-empty name and a non-nil check")

	// ErrUnknownMode is returned when a display or submit mode name is not recognized.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrUnknownComparator is returned for date comparators outside < > <= >= = !=.
	ErrUnknownComparator = errors.New("unknown date comparator")
)
