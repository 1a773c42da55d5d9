package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/hotlikeme/internal/hermes"
	"github.com/MikeSquared-Agency/hotlikeme/internal/rating"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

// ratingChange records one participant's before and after rating.
type ratingChange struct {
	id     int64
	before rating.Rating
	after  rating.Rating
}

// ParseOutcome validates a client-supplied outcome value for RecordOutcome.
func ParseOutcome(s string) (store.Outcome, error) {
	o := store.Outcome(s)
	if !o.Valid() {
		return "", fmt.Errorf("%w: unknown outcome %q", ErrValidation, s)
	}
	if !o.Terminal() {
		return "", fmt.Errorf("%w: cannot set outcome %q", ErrInvalidState, s)
	}
	return o, nil
}

// RecordOutcome decides an open comparison and updates both participants'
// ratings in the same transaction. A comparison can be decided only once;
// later calls fail with ErrInvalidState and leave ratings untouched.
func (e *Engine) RecordOutcome(ctx context.Context, comparisonID int64, outcome store.Outcome) (*store.Comparison, error) {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return nil, err
	}

	var decided *store.Comparison
	var changes []ratingChange
	err := e.store.InTx(ctx, func(tx store.Tx) error {
		c, err := tx.GetComparisonForUpdate(ctx, comparisonID)
		if err != nil {
			return err
		}
		if c.Outcome != store.OutcomeOpen {
			e.metrics.OutcomeRejected("not_open")
			return fmt.Errorf("%w: comparison %d already decided as %s", ErrInvalidState, c.ID, c.Outcome)
		}

		male, female, err := lockParticipants(ctx, tx, c)
		if err != nil {
			return err
		}
		before := [2]rating.Rating{
			{Mu: male.Mu, Sigma: male.Sigma},
			{Mu: female.Mu, Sigma: female.Sigma},
		}
		newMale, newFemale, err := e.model.ApplyOutcome(before[0], before[1], outcome)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		if err := tx.UpdateCandidateRating(ctx, male.ID, newMale.Mu, newMale.Sigma); err != nil {
			return fmt.Errorf("update male rating: %w", err)
		}
		if err := tx.UpdateCandidateRating(ctx, female.ID, newFemale.Mu, newFemale.Sigma); err != nil {
			return fmt.Errorf("update female rating: %w", err)
		}

		decided, err = tx.UpdateComparisonOutcome(ctx, c.ID, store.OutcomeOpen, outcome)
		if errors.Is(err, store.ErrConflict) {
			e.metrics.OutcomeRejected("conflict")
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		if err != nil {
			return fmt.Errorf("update outcome: %w", err)
		}

		changes = []ratingChange{
			{id: male.ID, before: before[0], after: newMale},
			{id: female.ID, before: before[1], after: newFemale},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.OutcomeRecorded(string(outcome))
	e.logger.Info("comparison decided",
		"comparison_id", decided.ID,
		"evaluator_id", decided.EvaluatorID,
		"outcome", decided.Outcome,
	)
	e.publishDecided(ctx, decided, changes)
	return decided, nil
}

// lockParticipants locks both candidates in ascending id order so that
// concurrent outcomes sharing candidates cannot deadlock.
func lockParticipants(ctx context.Context, tx store.Tx, c *store.Comparison) (*store.Candidate, *store.Candidate, error) {
	first, second := c.MaleID, c.FemaleID
	if second < first {
		first, second = second, first
	}
	a, err := tx.FindCandidateForUpdate(ctx, first)
	if err != nil {
		return nil, nil, fmt.Errorf("lock candidate: %w", err)
	}
	b, err := tx.FindCandidateForUpdate(ctx, second)
	if err != nil {
		return nil, nil, fmt.Errorf("lock candidate: %w", err)
	}
	if a.ID == c.MaleID {
		return a, b, nil
	}
	return b, a, nil
}

func (e *Engine) publishDecided(ctx context.Context, c *store.Comparison, changes []ratingChange) {
	e.publish(ctx, hermes.SubjectComparisonDecided(idString(c.ID)), hermes.ComparisonDecidedEvent{
		Envelope:     hermes.NewEnvelope(),
		ComparisonID: c.ID,
		EvaluatorID:  c.EvaluatorID,
		MaleID:       c.MaleID,
		FemaleID:     c.FemaleID,
		Outcome:      string(c.Outcome),
	})
	for _, ch := range changes {
		e.publish(ctx, hermes.SubjectCandidateRated(idString(ch.id)), hermes.CandidateRatedEvent{
			Envelope:      hermes.NewEnvelope(),
			CandidateID:   ch.id,
			ComparisonID:  c.ID,
			PreviousMu:    ch.before.Mu,
			PreviousSigma: ch.before.Sigma,
			Mu:            ch.after.Mu,
			Sigma:         ch.after.Sigma,
		})
	}
}
