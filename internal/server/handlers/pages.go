package handlers

import (
	"net/http"
	"strconv"

	"github.com/danhoward/aio-engine/pkg/types"
)

// PageExperiments returns one page's full experiment history, newest first.
func (h *Handlers) PageExperiments(w http.ResponseWriter, r *http.Request) {
	pageURL := pageURLParam(r)
	if pageURL == "" {
		h.writeError(w, http.StatusBadRequest, "url query parameter is required", nil)
		return
	}

	exps, err := h.store.GetExperimentsForPage(r.Context(), pageURL)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list page experiments", err)
		return
	}
	if exps == nil {
		exps = []types.Experiment{}
	}
	h.writeJSON(w, exps)
}

// PageScores returns a page's structure-score history, newest first. The
// optional limit parameter caps the number of snapshots.
func (h *Handlers) PageScores(w http.ResponseWriter, r *http.Request) {
	pageURL := pageURLParam(r)
	if pageURL == "" {
		h.writeError(w, http.StatusBadRequest, "url query parameter is required", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	snaps, err := h.store.GetScoreHistory(r.Context(), pageURL, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list score history", err)
		return
	}
	if snaps == nil {
		snaps = []types.ScoreSnapshot{}
	}
	h.writeJSON(w, snaps)
}
