package server

import (
	"expvar"

	"github.com/go-chi/chi/v5"

	"github.com/danhoward/aio-engine/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.store, s.thresholds)

	r.Route("/api", func(r chi.Router) {
		// Health
		r.Get("/health", h.Health)

		// Experiments
		r.Get("/experiments", h.ListExperiments)
		r.Get("/experiments/summary", h.Summary)
		r.Get("/experiments/{experimentID}", h.GetExperiment)
		r.Get("/experiments/{experimentID}/changes", h.ListChanges)
		r.Post("/experiments/{experimentID}/evaluate", h.EvaluateExperiment)

		// Pages
		r.Get("/pages/experiments", h.PageExperiments)
		r.Get("/pages/scores", h.PageScores)

		// Learning
		r.Get("/patterns", h.Patterns)
		r.Get("/performance", h.Performance)
	})

	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
}
