package handlers

import (
	"net/http"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Patterns returns change patterns whose experiments improved more often than
// not, largest sample first.
func (h *Handlers) Patterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.store.GetSuccessfulPatterns(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to aggregate patterns", err)
		return
	}
	if patterns == nil {
		patterns = []types.PatternStat{}
	}
	h.writeJSON(w, patterns)
}

// Performance returns per-element-kind outcome tallies across all evaluated
// experiments.
func (h *Handlers) Performance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.store.GetPerformanceByElement(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to aggregate element performance", err)
		return
	}
	if perf == nil {
		perf = []types.ElementPerformance{}
	}
	h.writeJSON(w, perf)
}
