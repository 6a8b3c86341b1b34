// Package api provides the HTTP surface for the dawn patrol service. It
// mounts a chi router with the cross-cutting middleware chain (panic
// recovery, request IDs, structured request logging) in front of the
// site, conditions, and decision handlers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dawnpatrol/internal/config"
	"dawnpatrol/internal/service"
)

// Server encapsulates the API's dependencies so tests can inject fakes and
// environments can wire distinct configurations.
type Server struct {
	Config    *config.Config
	Sites     service.SiteStore
	Evaluator *service.Evaluator
	Logger    *slog.Logger

	router *chi.Mux
}

// NewServer validates dependencies and prepares the router. The caller
// mounts routes after construction, which lets tests customize registration.
func NewServer(cfg *config.Config, sites service.SiteStore, evaluator *service.Evaluator, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if sites == nil {
		return nil, fmt.Errorf("site store must not be nil")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Sites:     sites,
		Evaluator: evaluator,
		Logger:    logger,
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server-held resources. Connection pools are owned by
// main and closed there; this hook exists for symmetry and future state.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown complete")
	return nil
}
