package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/formguard/pkg/logger"
)

// serve runs the HTTP server until ctx is done, then shuts it down
// gracefully within the configured timeout.
func serve(ctx context.Context, cfg httpConfig, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("http server started", slog.String("addr", cfg.Addr))

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		start := time.Now()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown", logger.Error(err))
		}
		runErr = <-errCh
		log.Info("http server stopped", logger.Duration(time.Since(start)))
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrServe, runErr)
	}
	return nil
}
