package api

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the global middleware chain and all endpoints.
//
// Middleware order matters: Recoverer is outermost so every panic is
// caught, RequestID runs before the logger so log lines carry the
// correlation ID.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))

	s.router.Get("/healthz", s.HandleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Route("/sites", func(r chi.Router) {
			r.Get("/", s.HandleListSites)
			r.Route("/{siteID}", func(r chi.Router) {
				r.Get("/", s.HandleGetSite)
				r.Get("/conditions", s.HandleConditions)
				r.Get("/window", s.HandleWindow)
				r.Get("/decision", s.HandleDecision)
			})
		})
	})
}
