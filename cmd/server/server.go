package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// startHTTPServer serves router on ln until ctx is cancelled, then shuts the
// server down gracefully and runs application cleanup.
// Returns an error if the server fails or does not shut down in time.
func (app *application) startHTTPServer(ctx context.Context, ln net.Listener, router http.Handler) error {
	// Request contexts derive from baseCtx. Shutdown does not track hijacked
	// WebSocket connections, so cancelling it is what ends open feeds.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	// No WriteTimeout: message handlers wait on the model and the feed is long-lived
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "addr", ln.Addr().String())
		serveErr <- server.Serve(ln)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Shutting down server...")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("Server failed", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}
	cancelBase()

	app.cleanup()

	app.logger.Info("Server shutdown completed")
	return runErr
}
