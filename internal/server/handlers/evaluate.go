package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danhoward/aio-engine/internal/lifecycle"
	"github.com/danhoward/aio-engine/internal/store"
)

// EvaluateExperiment runs the evaluator over one experiment on demand. A
// verdict is persisted only when the experiment is ready for evaluation;
// a thin-volume experiment before its deadline stays active so later passes
// can retry it with more data. The response always reports how far
// evaluation got.
func (h *Handlers) EvaluateExperiment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "experimentID")

	exp, err := h.store.GetExperiment(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "experiment not found", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to load experiment", err)
		return
	}

	now := time.Now().UTC()
	res := h.evaluator.Evaluate(*exp, now)
	if res.Outcome != "" && lifecycle.ReadyForEvaluation(*exp, now, h.thresholds) {
		if err := h.store.UpdatePostMetrics(r.Context(), id, *exp.Post, res.Outcome, res.Notes); err != nil {
			h.writeError(w, http.StatusInternalServerError, "failed to record outcome", err)
			return
		}
	}

	h.writeJSON(w, res)
}
