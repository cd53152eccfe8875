// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// New creates a *slog.Logger configured by Option functions. Config carries
// the environment-driven setup: an environment preset (development logs text
// at DEBUG, staging and production log JSON at INFO) that LOG_LEVEL and
// LOG_FORMAT can override. ContextExtractor callbacks pull values such as a
// request id out of the context on every record.
//
// # Architecture
//
// New picks slog.NewTextHandler or slog.NewJSONHandler based on the
// configured Format and, when extractors are registered, wraps it so the
// extractors run before each record reaches the underlying handler.
//
// Helper constructors in attr.go keep attribute names consistent across the
// validation engine and the HTTP layer: Form, Field, Fields, Rule and Status
// describe validation work, Component and Event describe where it happened.
//
// # Usage
//
//	import "github.com/dmitrymomot/formguard/pkg/logger"
//
//	func main() {
//	    var cfg logger.Config // APP_ENV, APP_NAME, LOG_LEVEL, LOG_FORMAT
//	    config.MustLoad(&cfg)
//
//	    log := logger.New(
//	        logger.WithConfig(cfg),
//	        logger.WithContextExtractors(formhttp.RequestIDExtractor()),
//	    )
//	    logger.SetAsDefault(log)
//
//	    log.Info("submission blocked",
//	        logger.Form(sessionID),
//	        logger.Fields("email", "start"),
//	    )
//	}
//
// # Error Handling
//
// Error and Errors produce attributes only when the supplied error value is
// non-nil, so
//
//	log.Info("lookup finished", logger.Error(err))
//
// needs no additional nil check.
package logger
