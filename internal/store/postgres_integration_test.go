//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		// Truncate in dependency order
		_, _ = s.pool.Exec(ctx, "TRUNCATE comparisons CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE candidates CASCADE")
		s.Close()
	})

	return s
}

func seedPostgres(t *testing.T, s *PostgresStore) {
	t.Helper()
	ctx := context.Background()
	for _, c := range []*Candidate{
		{ID: 7, Name: "Sabine Rademacher", Gender: GenderFemale},
		{ID: 3, Name: "Fabian Brun", Gender: GenderMale},
		{ID: 9, Name: "Nadine Gasser", Gender: GenderFemale},
		{ID: 4, Name: "Pascal Heid", Gender: GenderMale},
	} {
		if err := s.CreateCandidate(ctx, c); err != nil {
			t.Fatalf("CreateCandidate failed: %v", err)
		}
	}
}

func TestCreateAndFindCandidate(t *testing.T) {
	s := setupTestDB(t)
	seedPostgres(t, s)
	ctx := context.Background()

	got, err := s.FindCandidate(ctx, 3)
	if err != nil {
		t.Fatalf("FindCandidate failed: %v", err)
	}
	if got.Name != "Fabian Brun" {
		t.Errorf("expected name 'Fabian Brun', got '%s'", got.Name)
	}
	if got.Mu != DefaultMu || got.Sigma != DefaultSigma {
		t.Errorf("expected default rating, got (%f, %f)", got.Mu, got.Sigma)
	}

	if _, err := s.FindCandidate(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	male := GenderMale
	males, err := s.ListCandidates(ctx, 3, &male)
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(males) != 1 || males[0].ID != 4 {
		t.Errorf("expected only candidate 4, got %+v", males)
	}
}

func TestInsertComparisonUniqueness(t *testing.T) {
	s := setupTestDB(t)
	seedPostgres(t, s)
	ctx := context.Background()

	c, err := s.InsertComparison(ctx, 7, 3, 9)
	if err != nil {
		t.Fatalf("InsertComparison failed: %v", err)
	}
	if c.Outcome != OutcomeOpen {
		t.Errorf("expected open outcome, got %s", c.Outcome)
	}

	if _, err := s.InsertComparison(ctx, 7, 3, 9); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if _, err := s.InsertComparison(ctx, 7, 3, 7); !errors.Is(err, ErrSelfComparison) {
		t.Errorf("expected ErrSelfComparison, got %v", err)
	}
}

func TestInsertComparisonConcurrent(t *testing.T) {
	s := setupTestDB(t)
	seedPostgres(t, s)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertComparison(context.Background(), 7, 4, 9)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicate):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one insert to win, got %d", created)
	}
}

func TestOutcomeCompareAndSet(t *testing.T) {
	s := setupTestDB(t)
	seedPostgres(t, s)
	ctx := context.Background()

	c, err := s.InsertComparison(ctx, 7, 3, 9)
	if err != nil {
		t.Fatalf("InsertComparison failed: %v", err)
	}

	err = s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.FindCandidateForUpdate(ctx, 3); err != nil {
			return err
		}
		if err := tx.UpdateCandidateRating(ctx, 3, 27.5, 7.9); err != nil {
			return err
		}
		_, err := tx.UpdateComparisonOutcome(ctx, c.ID, OutcomeOpen, OutcomeMale)
		return err
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	got, _ := s.GetComparison(ctx, c.ID)
	if got.Outcome != OutcomeMale || got.DecidedAt == nil {
		t.Errorf("expected decided male outcome, got %+v", got)
	}
	male, _ := s.FindCandidate(ctx, 3)
	if male.Mu != 27.5 {
		t.Errorf("expected mu 27.5, got %f", male.Mu)
	}

	err = s.InTx(ctx, func(tx Tx) error {
		_, err := tx.UpdateComparisonOutcome(ctx, c.ID, OutcomeOpen, OutcomeFemale)
		return err
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestInTxRollback(t *testing.T) {
	s := setupTestDB(t)
	seedPostgres(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx Tx) error {
		if err := tx.UpdateCandidateRating(ctx, 3, 40, 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	male, _ := s.FindCandidate(ctx, 3)
	if male.Mu != DefaultMu {
		t.Errorf("expected rollback to keep default mu, got %f", male.Mu)
	}
}

func TestGetStats(t *testing.T) {
	s := setupTestDB(t)
	seedPostgres(t, s)
	ctx := context.Background()

	if _, err := s.InsertComparison(ctx, 7, 3, 9); err != nil {
		t.Fatalf("InsertComparison failed: %v", err)
	}
	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Candidates != 4 || stats.Open != 1 || stats.Evaluators != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
