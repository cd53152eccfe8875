package dom

import "errors"

var (
	// ErrInvalidSelector is returned when a CSS selector cannot be compiled.
	ErrInvalidSelector = errors.New("dom.invalid_selector")

	// ErrParse is returned when markup cannot be parsed.
	ErrParse = errors.New("dom.parse_failed")

	// ErrRender is returned when a node cannot be serialized.
	ErrRender = errors.New("dom.render_failed")
)
