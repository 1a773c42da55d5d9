package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/hotlikeme/internal/hermes"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

// GetOrCreateOpenComparisons guarantees, as far as the population allows,
// that evaluatorID has target open comparisons, and returns them ordered by
// id. Pairs already offered to the evaluator, decided or not, are never
// offered again, and the evaluator is never one of the pair.
func (e *Engine) GetOrCreateOpenComparisons(ctx context.Context, evaluatorID int64, target int) ([]*store.Comparison, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: target count must be positive, got %d", ErrValidation, target)
	}
	if target > e.maxTarget {
		return nil, fmt.Errorf("%w: target count %d exceeds maximum %d", ErrValidation, target, e.maxTarget)
	}
	start := time.Now()

	if _, err := e.store.FindCandidate(ctx, evaluatorID); err != nil {
		return nil, fmt.Errorf("find evaluator: %w", err)
	}

	existing, err := e.store.ListComparisons(ctx, evaluatorID)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	var open []*store.Comparison
	seen := make(map[store.Pair]struct{}, len(existing))
	for _, c := range existing {
		seen[c.Pair()] = struct{}{}
		if c.Outcome == store.OutcomeOpen {
			open = append(open, c)
		}
	}
	if len(open) >= target {
		e.metrics.SupplyFinished(time.Since(start), false)
		return open[:target], nil
	}

	males, females, err := e.pools(ctx, evaluatorID)
	if err != nil {
		return nil, err
	}

	created, err := e.generate(ctx, evaluatorID, target-len(open), males, females, seen)
	if err != nil {
		return nil, err
	}
	open = append(open, created...)
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })

	e.metrics.ComparisonsCreated(len(created))
	e.metrics.SupplyFinished(time.Since(start), len(open) < target)
	e.logger.Info("supplied open comparisons",
		"evaluator_id", evaluatorID,
		"target", target,
		"open", len(open),
		"created", len(created),
		"males", len(males),
		"females", len(females),
	)
	return open, nil
}

func (e *Engine) pools(ctx context.Context, evaluatorID int64) ([]*store.Candidate, []*store.Candidate, error) {
	male, female := store.GenderMale, store.GenderFemale
	males, err := e.store.ListCandidates(ctx, evaluatorID, &male)
	if err != nil {
		return nil, nil, fmt.Errorf("list male candidates: %w", err)
	}
	females, err := e.store.ListCandidates(ctx, evaluatorID, &female)
	if err != nil {
		return nil, nil, fmt.Errorf("list female candidates: %w", err)
	}
	return males, females, nil
}

// generate inserts up to want new comparisons drawn without replacement from
// the males x females pair space. Insert attempts are capped by the number of
// pairs in that space the evaluator has not seen yet.
func (e *Engine) generate(ctx context.Context, evaluatorID int64, want int, males, females []*store.Candidate, seen map[store.Pair]struct{}) ([]*store.Comparison, error) {
	space := len(males) * len(females)
	if space == 0 {
		return nil, nil
	}

	maleSet := make(map[int64]struct{}, len(males))
	for _, m := range males {
		maleSet[m.ID] = struct{}{}
	}
	femaleSet := make(map[int64]struct{}, len(females))
	for _, f := range females {
		femaleSet[f.ID] = struct{}{}
	}
	seenInSpace := 0
	for p := range seen {
		_, okM := maleSet[p.MaleID]
		_, okF := femaleSet[p.FemaleID]
		if okM && okF {
			seenInSpace++
		}
	}
	budget := space - seenInSpace

	var created []*store.Comparison
	sampler := newPairSampler(space, e.rng)
	for attempts := 0; len(created) < want && attempts < budget; {
		idx, ok := sampler.next()
		if !ok {
			break
		}
		pair := store.Pair{
			MaleID:   males[idx/len(females)].ID,
			FemaleID: females[idx%len(females)].ID,
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		attempts++
		seen[pair] = struct{}{}

		c, err := e.store.InsertComparison(ctx, evaluatorID, pair.MaleID, pair.FemaleID)
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent supplier for the same evaluator got there first.
			e.metrics.DuplicateRejected()
			e.logger.Debug("pair already taken", "evaluator_id", evaluatorID, "male_id", pair.MaleID, "female_id", pair.FemaleID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert comparison: %w", err)
		}
		created = append(created, c)

		e.publish(ctx, hermes.SubjectComparisonCreated(idString(c.ID)), hermes.ComparisonCreatedEvent{
			Envelope:     hermes.NewEnvelope(),
			ComparisonID: c.ID,
			EvaluatorID:  c.EvaluatorID,
			MaleID:       c.MaleID,
			FemaleID:     c.FemaleID,
		})
	}
	return created, nil
}
