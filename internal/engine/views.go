package engine

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/hotlikeme/internal/rating"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

// CandidateView is a candidate with its hotness relative to the whole
// current population.
type CandidateView struct {
	*store.Candidate
	Hotness float64 `json:"hotness"`
}

// ComparisonView inlines the three participants and adds the model's draw
// probability for the pairing.
type ComparisonView struct {
	*store.Comparison
	Evaluator *CandidateView `json:"evaluator"`
	Male      *CandidateView `json:"male"`
	Female    *CandidateView `json:"female"`
	Quality   float64        `json:"quality"`
}

// RegisterCandidate stores a new candidate at the model's initial rating.
func (e *Engine) RegisterCandidate(ctx context.Context, c *store.Candidate) error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: candidate id must be positive", ErrValidation)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: candidate name required", ErrValidation)
	}
	if _, err := store.ParseGender(string(c.Gender)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	initial := e.model.Environment().Initial()
	c.Mu, c.Sigma = initial.Mu, initial.Sigma
	if err := e.store.CreateCandidate(ctx, c); err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	e.logger.Info("candidate registered", "candidate_id", c.ID, "gender", c.Gender)
	return nil
}

// Candidates lists candidates, optionally of one gender, with hotness
// scaled against every candidate regardless of the filter.
func (e *Engine) Candidates(ctx context.Context, gender *store.Gender) ([]CandidateView, error) {
	all, err := e.store.ListCandidates(ctx, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	scale := populationScale(all)

	out := make([]CandidateView, 0, len(all))
	for _, c := range all {
		if gender != nil && c.Gender != *gender {
			continue
		}
		out = append(out, CandidateView{Candidate: c, Hotness: scale.Hotness(c.Mu)})
	}
	return out, nil
}

func (e *Engine) Candidate(ctx context.Context, id int64) (*CandidateView, error) {
	c, err := e.store.FindCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := e.store.ListCandidates(ctx, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return &CandidateView{Candidate: c, Hotness: populationScale(all).Hotness(c.Mu)}, nil
}

func (e *Engine) Comparison(ctx context.Context, id int64) (*ComparisonView, error) {
	c, err := e.store.GetComparison(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := e.store.ListCandidates(ctx, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	scale := populationScale(all)
	byID := make(map[int64]*store.Candidate, len(all))
	for _, cand := range all {
		byID[cand.ID] = cand
	}
	participant := func(id int64) (*CandidateView, error) {
		cand, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
		}
		return &CandidateView{Candidate: cand, Hotness: scale.Hotness(cand.Mu)}, nil
	}

	view := &ComparisonView{Comparison: c}
	if view.Evaluator, err = participant(c.EvaluatorID); err != nil {
		return nil, err
	}
	if view.Male, err = participant(c.MaleID); err != nil {
		return nil, err
	}
	if view.Female, err = participant(c.FemaleID); err != nil {
		return nil, err
	}
	view.Quality = e.model.Quality(
		rating.Rating{Mu: view.Male.Mu, Sigma: view.Male.Sigma},
		rating.Rating{Mu: view.Female.Mu, Sigma: view.Female.Sigma},
	)
	return view, nil
}

func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.GetStats(ctx)
}

func populationScale(cs []*store.Candidate) rating.Scale {
	mus := make([]float64, len(cs))
	for i, c := range cs {
		mus[i] = c.Mu
	}
	return rating.NewScale(mus)
}
