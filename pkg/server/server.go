/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hostplan/hostplan/pkg/engine"
	"github.com/hostplan/hostplan/pkg/executor"
)

// Server is the hostplan agent: it periodically applies the engine to keep
// the host converged on its profiles, and exposes the last pass outcome,
// health probes, and prometheus metrics over HTTP.
type Server struct {
	config      *Config
	engine      *engine.Engine
	httpServer  *http.Server
	rateLimiter *rate.Limiter

	mu         sync.RWMutex
	ready      bool
	lastResult *executor.Result
	lastError  string
	lastPassAt time.Time
}

// NewServer creates an agent server around a configured engine.
func NewServer(eng *engine.Engine, config *Config) *Server {
	if config == nil {
		config = NewConfig()
	}

	s := &Server{
		config:      config,
		engine:      eng,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleDefault)

	// Probes and metrics bypass the middleware chain so a rate-limited
	// agent still answers its kubelet.
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/status", s.withMiddleware(s.handleStatus))
	mux.HandleFunc("/v1/options", s.withMiddleware(s.handleOptions))

	return mux
}

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Run starts the HTTP server and the convergence loop, and blocks until
// the context is canceled or either fails.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("starting agent",
		"address", s.httpServer.Addr,
		"interval", s.config.Interval,
		"version", s.config.Version)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.serve(gctx)
	})
	g.Go(func() error {
		return s.converge(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("agent stopped gracefully")
	return nil
}

func (s *Server) serve(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// converge runs a pass immediately and then on every interval tick. A
// failed pass is recorded and retried on the next tick; the agent never
// exits on pass failure.
func (s *Server) converge(ctx context.Context) error {
	if s.config.Interval <= 0 {
		s.SetReady(true)
		<-ctx.Done()
		return nil
	}

	s.applyOnce(ctx)
	s.SetReady(true)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.applyOnce(ctx)
		}
	}
}

func (s *Server) applyOnce(ctx context.Context) {
	result, err := s.engine.Apply(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = result
	s.lastPassAt = time.Now().UTC()
	if err != nil {
		s.lastError = err.Error()
		slog.Error("convergence pass failed", "error", err)
	} else {
		s.lastError = ""
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down agent")
	return s.httpServer.Shutdown(shutdownCtx)
}
