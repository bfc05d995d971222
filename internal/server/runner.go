// Package server hosts the HTTP API with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config for the HTTP server.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Runner manages the HTTP server lifecycle.
type Runner struct {
	handler http.Handler
	config  Config
	logger  *slog.Logger

	// addr is set once the listener is bound; tests use it to learn
	// the port when config.Port is 0.
	addr chan net.Addr
}

// NewRunner creates a new runner serving handler.
func NewRunner(handler http.Handler, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Runner{
		handler: handler,
		config:  cfg,
		logger:  logger.With("component", "server"),
		addr:    make(chan net.Addr, 1),
	}
}

// Run serves until the context is cancelled, then shuts down
// gracefully. It blocks until shutdown completes.
func (r *Runner) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", r.config.Host, r.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	r.addr <- ln.Addr()

	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		r.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Addr returns the bound listen address. Blocks until Run has bound
// the listener or ctx is cancelled.
func (r *Runner) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case a := <-r.addr:
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
