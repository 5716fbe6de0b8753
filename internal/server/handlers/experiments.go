package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// ListExperiments returns all experiments, newest first. With ?status=active
// only open experiments are returned.
func (h *Handlers) ListExperiments(w http.ResponseWriter, r *http.Request) {
	var (
		exps []types.Experiment
		err  error
	)
	switch r.URL.Query().Get("status") {
	case "":
		exps, err = h.store.GetAllExperiments(r.Context())
	case string(types.ExperimentActive):
		exps, err = h.store.GetActiveExperiments(r.Context())
	default:
		h.writeError(w, http.StatusBadRequest, "unknown status filter", nil)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list experiments", err)
		return
	}
	if exps == nil {
		exps = []types.Experiment{}
	}
	h.writeJSON(w, exps)
}

// GetExperiment returns one experiment by id.
func (h *Handlers) GetExperiment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")

	exp, err := h.store.GetExperiment(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "experiment not found", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to get experiment", err)
		return
	}
	h.writeJSON(w, exp)
}

// ListChanges returns the changes applied within an experiment.
func (h *Handlers) ListChanges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")

	if _, err := h.store.GetExperiment(r.Context(), id); err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "experiment not found", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to get experiment", err)
		return
	}

	changes, err := h.store.GetChanges(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list changes", err)
		return
	}
	if changes == nil {
		changes = []types.Change{}
	}
	h.writeJSON(w, changes)
}

// Summary returns aggregate experiment counts and the overall success rate.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	exps, err := h.store.GetAllExperiments(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list experiments", err)
		return
	}
	h.writeJSON(w, store.Summarize(exps))
}
