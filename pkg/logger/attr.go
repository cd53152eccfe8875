package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Form records the form session identifier under the key "form".
// If id is nil, it returns an empty Attr.
func Form(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("form", id)
}

// Field records the field key under the key "field".
func Field(key string) slog.Attr {
	return slog.String("field", key)
}

// Fields records a list of field keys under the key "fields".
// An empty list returns an empty Attr.
func Fields(keys ...string) slog.Attr {
	if len(keys) == 0 {
		return slog.Attr{}
	}
	return slog.Any("fields", keys)
}

// Rule records the validation rule name under the key "rule".
func Rule(name string) slog.Attr {
	return slog.String("rule", name)
}

// Status records a validation status under the key "status".
// Values implementing fmt.Stringer are logged by their string form.
func Status(s any) slog.Attr {
	if st, ok := s.(interface{ String() string }); ok {
		return slog.String("status", st.String())
	}
	return slog.Any("status", s)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
