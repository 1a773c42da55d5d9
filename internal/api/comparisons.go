package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/hotlikeme/internal/engine"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

type ComparisonsHandler struct {
	engine        *engine.Engine
	defaultTarget int
}

func NewComparisonsHandler(e *engine.Engine, defaultTarget int) *ComparisonsHandler {
	return &ComparisonsHandler{engine: e, defaultTarget: defaultTarget}
}

// Supply returns the evaluator's open comparisons, creating new ones up to
// the requested count.
func (h *ComparisonsHandler) Supply(w http.ResponseWriter, r *http.Request) {
	evaluatorID, err := idParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	target := h.defaultTarget
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid count"})
			return
		}
		target = n
	}

	open, err := h.engine.GetOrCreateOpenComparisons(r.Context(), evaluatorID, target)
	if err != nil {
		writeError(w, err)
		return
	}
	if open == nil {
		open = []*store.Comparison{}
	}
	writeJSON(w, http.StatusOK, open)
}

func (h *ComparisonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	view, err := h.engine.Comparison(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type OutcomeRequest struct {
	Outcome string `json:"outcome"`
}

func (h *ComparisonsHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	outcome, err := engine.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, err)
		return
	}

	decided, err := h.engine.RecordOutcome(r.Context(), id, outcome)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decided)
}
