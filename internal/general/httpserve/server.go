// Package httpserve runs the HTTP listener shared by all service modes.
package httpserve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"ride-share/internal/general/logger"
)

const shutdownGrace = 10 * time.Second

// Serve starts an HTTP server with the platform's standard timeouts and
// blocks until ctx is cancelled or the listener fails. On cancellation it
// drains in-flight requests for up to shutdownGrace before returning.
func Serve(ctx context.Context, log *logger.Logger, port int, h http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	failed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		if err != nil {
			log.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": port})
		}
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutdown_started", "Starting graceful shutdown", nil)
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
	}
	return nil
}

// LimitConcurrency caps the number of in-flight requests. Excess requests
// wait for a slot until the client gives up, then get a 503.
func LimitConcurrency(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
