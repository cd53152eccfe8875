package logger

import (
	"context"
	"log/slog"
	"slices"
)

// ContextExtractor pulls one attribute out of a context, for example the
// request id of the HTTP request that triggered a validation pass.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler adds the attributes produced by its extractors to every
// record. Extractors run per record so request scoped values stay current.
type contextHandler struct {
	slog.Handler
	extractors []ContextExtractor
}

// withContextAttrs wraps next. It returns next unchanged when there is
// nothing to extract.
func withContextAttrs(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	extractors = slices.DeleteFunc(slices.Clone(extractors), func(ex ContextExtractor) bool {
		return ex == nil
	})
	if len(extractors) == 0 {
		return next
	}
	return &contextHandler{Handler: next, extractors: extractors}
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok && attr.Key != "" {
			rec.AddAttrs(attr)
		}
	}
	return h.Handler.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), extractors: h.extractors}
}
