package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type comparisonKey struct {
	evaluatorID int64
	pair        Pair
}

// MemoryStore is an in-process Store. It enforces the same uniqueness and
// self-comparison constraints as the Postgres schema, and InTx serializes
// transactions behind a single lock.
type MemoryStore struct {
	mu          sync.RWMutex
	candidates  map[int64]*Candidate
	comparisons map[int64]*Comparison
	pairs       map[comparisonKey]int64
	nextID      int64
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		candidates:  make(map[int64]*Candidate),
		comparisons: make(map[int64]*Comparison),
		pairs:       make(map[comparisonKey]int64),
		now:         time.Now,
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateCandidate(_ context.Context, c *Candidate) error {
	if _, err := ParseGender(string(c.Gender)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[c.ID]; ok {
		return fmt.Errorf("candidate %d: %w", c.ID, ErrDuplicate)
	}
	if c.Mu == 0 && c.Sigma == 0 {
		c.Mu, c.Sigma = DefaultMu, DefaultSigma
	}
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.candidates[c.ID] = &cp
	return nil
}

func (m *MemoryStore) FindCandidate(_ context.Context, id int64) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) ListCandidates(_ context.Context, excludeID int64, gender *Gender) ([]*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Candidate
	for id, c := range m.candidates {
		if id == excludeID {
			continue
		}
		if gender != nil && c.Gender != *gender {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetComparison(_ context.Context, id int64) (*Comparison, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comparisons[id]
	if !ok {
		return nil, fmt.Errorf("comparison %d: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) ListComparisons(_ context.Context, evaluatorID int64) ([]*Comparison, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Comparison
	for _, c := range m.comparisons {
		if c.EvaluatorID == evaluatorID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) InsertComparison(_ context.Context, evaluatorID, maleID, femaleID int64) (*Comparison, error) {
	if maleID == evaluatorID || femaleID == evaluatorID {
		return nil, ErrSelfComparison
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range []int64{evaluatorID, maleID, femaleID} {
		if _, ok := m.candidates[id]; !ok {
			return nil, fmt.Errorf("comparison references unknown candidate %d: %w", id, ErrNotFound)
		}
	}
	key := comparisonKey{evaluatorID: evaluatorID, pair: Pair{MaleID: maleID, FemaleID: femaleID}}
	if _, ok := m.pairs[key]; ok {
		return nil, ErrDuplicate
	}
	m.nextID++
	c := &Comparison{
		ID:          m.nextID,
		EvaluatorID: evaluatorID,
		MaleID:      maleID,
		FemaleID:    femaleID,
		Outcome:     OutcomeOpen,
		CreatedAt:   m.now(),
	}
	m.comparisons[c.ID] = c
	m.pairs[key] = c.ID
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		store:       m,
		ratings:     make(map[int64][2]float64),
		comparisons: make(map[int64]*Comparison),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	now := m.now()
	for id, r := range tx.ratings {
		c := m.candidates[id]
		c.Mu, c.Sigma = r[0], r[1]
		c.UpdatedAt = now
	}
	for id, c := range tx.comparisons {
		m.comparisons[id] = c
	}
	return nil
}

func (m *MemoryStore) GetStats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &Stats{Candidates: len(m.candidates)}
	evaluators := make(map[int64]struct{})
	for _, c := range m.comparisons {
		evaluators[c.EvaluatorID] = struct{}{}
		switch c.Outcome {
		case OutcomeOpen:
			stats.Open++
			continue
		case OutcomeMale:
			stats.MaleWins++
		case OutcomeFemale:
			stats.FemaleWins++
		case OutcomeEqual:
			stats.Draws++
		}
		stats.Decided++
	}
	stats.Evaluators = len(evaluators)
	return stats, nil
}

// memTx buffers writes until InTx commits. The store lock is held for the
// lifetime of the transaction, so reads need no further locking.
type memTx struct {
	store       *MemoryStore
	ratings     map[int64][2]float64
	comparisons map[int64]*Comparison
}

func (t *memTx) GetComparisonForUpdate(_ context.Context, id int64) (*Comparison, error) {
	if c, ok := t.comparisons[id]; ok {
		cp := *c
		return &cp, nil
	}
	c, ok := t.store.comparisons[id]
	if !ok {
		return nil, fmt.Errorf("comparison %d: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) FindCandidateForUpdate(_ context.Context, id int64) (*Candidate, error) {
	c, ok := t.store.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	cp := *c
	if r, ok := t.ratings[id]; ok {
		cp.Mu, cp.Sigma = r[0], r[1]
	}
	return &cp, nil
}

func (t *memTx) UpdateCandidateRating(_ context.Context, id int64, mu, sigma float64) error {
	if _, ok := t.store.candidates[id]; !ok {
		return fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	t.ratings[id] = [2]float64{mu, sigma}
	return nil
}

func (t *memTx) UpdateComparisonOutcome(ctx context.Context, id int64, expected, outcome Outcome) (*Comparison, error) {
	c, err := t.GetComparisonForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Outcome != expected {
		return nil, fmt.Errorf("comparison %d: %w", id, ErrConflict)
	}
	now := t.store.now()
	c.Outcome = outcome
	c.DecidedAt = &now
	t.comparisons[id] = c
	cp := *c
	return &cp, nil
}
