// Package handlers implements HTTP request handlers for the experiment API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danhoward/aio-engine/internal/evaluator"
	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	store      store.Store
	evaluator  *evaluator.Evaluator
	thresholds types.Thresholds
	logger     *slog.Logger
}

// New creates a new Handlers instance.
func New(st store.Store, thresholds types.Thresholds) *Handlers {
	return &Handlers{
		store:      st,
		evaluator:  evaluator.New(thresholds),
		thresholds: thresholds,
		logger:     slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// writeError logs the internal error and returns a sanitized JSON error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeJSON encodes v as the response body.
func (h *Handlers) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// pageURLParam extracts the required url query parameter.
func pageURLParam(r *http.Request) string {
	return r.URL.Query().Get("url")
}
