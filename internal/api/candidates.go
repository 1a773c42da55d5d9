package api

import (
	"encoding/json"
	"net/http"

	"github.com/MikeSquared-Agency/hotlikeme/internal/engine"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

type CandidatesHandler struct {
	engine *engine.Engine
}

func NewCandidatesHandler(e *engine.Engine) *CandidatesHandler {
	return &CandidatesHandler{engine: e}
}

type CreateCandidateRequest struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Age        *int   `json:"age,omitempty"`
	Gender     string `json:"gender"`
}

func (h *CandidatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c := &store.Candidate{
		ID:         req.ID,
		Name:       req.Name,
		ProfilePic: req.ProfilePic,
		Age:        req.Age,
		Gender:     store.Gender(req.Gender),
	}
	if err := h.engine.RegisterCandidate(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CandidatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	view, err := h.engine.Candidate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// List returns candidates with hotness, optionally filtered by ?gender=.
func (h *CandidatesHandler) List(w http.ResponseWriter, r *http.Request) {
	var gender *store.Gender
	if v := r.URL.Query().Get("gender"); v != "" {
		g, err := store.ParseGender(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		gender = &g
	}

	views, err := h.engine.Candidates(r.Context(), gender)
	if err != nil {
		writeError(w, err)
		return
	}
	if views == nil {
		views = []engine.CandidateView{}
	}
	writeJSON(w, http.StatusOK, views)
}
