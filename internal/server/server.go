// Package server implements the read-side HTTP API over the experiment store.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// Server is the HTTP API server.
type Server struct {
	store      store.Store
	router     chi.Router
	cfg        types.ServerConfig
	thresholds types.Thresholds
	srv        *http.Server
}

// New creates a new HTTP server.
func New(cfg types.ServerConfig, st store.Store, thresholds types.Thresholds) *Server {
	s := &Server{
		store:      st,
		cfg:        cfg,
		thresholds: thresholds,
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(APIKeyMiddleware(cfg.APIKey))
	if cfg.MaxRequestBody > 0 {
		r.Use(MaxBodyMiddleware(cfg.MaxRequestBody))
	}

	s.router = r
	s.registerRoutes(r)
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	fmt.Printf("aio server listening on %s\n", s.cfg.Addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
