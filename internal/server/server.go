/*
Copyright 2025 The sipstuff-k8s-operator authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package server exposes the operator's HTTP interface.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"
	"golang.org/x/time/rate"

	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/metrics"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/orchestrator"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/scheduler"
)

const shutdownGrace = 10 * time.Second

// Server wires HTTP handlers to the job manager and the schedule registry.
type Server struct {
	router      chi.Router
	cfg         *config.OperatorConfig
	manager     *orchestrator.Manager
	schedules   *scheduler.Registry
	callMetrics *metrics.CallJobMetrics
	httpMetrics *metrics.HTTPMetrics
	limiter     *rate.Limiter
	logger      logr.Logger
}

// NewServer constructs a Server with middleware and routes. A zero rate QPS
// in the config disables the POST /call limiter.
func NewServer(
	cfg *config.OperatorConfig,
	manager *orchestrator.Manager,
	schedules *scheduler.Registry,
	callMetrics *metrics.CallJobMetrics,
	httpMetrics *metrics.HTTPMetrics,
	logger logr.Logger,
) *Server {
	s := &Server{
		cfg:         cfg,
		manager:     manager,
		schedules:   schedules,
		callMetrics: callMetrics,
		httpMetrics: httpMetrics,
		logger:      logger,
	}
	if cfg.CallRateQPS > 0 {
		burst := cfg.CallRateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.CallRateQPS), burst)
	}

	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.With(s.rateLimitMiddleware).Post("/call", s.handleCall)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{name}", s.handleGetJob)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/schedules", func(r chi.Router) {
		r.Post("/", s.handleAddSchedule)
		r.Get("/", s.handleListSchedules)
		r.Get("/{name}", s.handleGetSchedule)
		r.Delete("/{name}", s.handleDeleteSchedule)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
