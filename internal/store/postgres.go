package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Postgres error codes we translate into sentinel errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables and constraints if they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const candidateColumns = `id, name, profile_pic, age, gender, mu, sigma, created_at, updated_at`

const comparisonColumns = `id, evaluator_id, male_id, female_id, outcome, created_at, decided_at`

func (s *PostgresStore) CreateCandidate(ctx context.Context, c *Candidate) error {
	if c.Mu == 0 && c.Sigma == 0 {
		c.Mu, c.Sigma = DefaultMu, DefaultSigma
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO candidates (id, name, profile_pic, age, gender, mu, sigma)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, nullString(c.ProfilePic), c.Age, c.Gender, c.Mu, c.Sigma,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return fmt.Errorf("candidate %d: %w", c.ID, ErrDuplicate)
		}
		return err
	}
	return nil
}

func (s *PostgresStore) FindCandidate(ctx context.Context, id int64) (*Candidate, error) {
	return findCandidate(ctx, s.pool, id, false)
}

func (s *PostgresStore) ListCandidates(ctx context.Context, excludeID int64, gender *Gender) ([]*Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id <> $1`
	args := []any{excludeID}
	if gender != nil {
		query += ` AND gender = $2`
		args = append(args, string(*gender))
	}
	query += ` ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetComparison(ctx context.Context, id int64) (*Comparison, error) {
	return getComparison(ctx, s.pool, id, false)
}

func (s *PostgresStore) ListComparisons(ctx context.Context, evaluatorID int64) ([]*Comparison, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+comparisonColumns+`
		FROM comparisons WHERE evaluator_id = $1
		ORDER BY id ASC`, evaluatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Comparison
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertComparison(ctx context.Context, evaluatorID, maleID, femaleID int64) (*Comparison, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO comparisons (evaluator_id, male_id, female_id, outcome)
		VALUES ($1, $2, $3, 'open')
		RETURNING `+comparisonColumns,
		evaluatorID, maleID, femaleID,
	)
	c, err := scanComparison(row)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return nil, ErrDuplicate
		case pgCheckViolation:
			return nil, ErrSelfComparison
		case pgForeignKeyViolation:
			return nil, fmt.Errorf("comparison references unknown candidate: %w", ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM candidates),
			COUNT(*) FILTER (WHERE outcome = 'open'),
			COUNT(*) FILTER (WHERE outcome <> 'open'),
			COUNT(*) FILTER (WHERE outcome = 'male'),
			COUNT(*) FILTER (WHERE outcome = 'female'),
			COUNT(*) FILTER (WHERE outcome = 'equal'),
			COUNT(DISTINCT evaluator_id)
		FROM comparisons`,
	).Scan(&stats.Candidates, &stats.Open, &stats.Decided,
		&stats.MaleWins, &stats.FemaleWins, &stats.Draws, &stats.Evaluators)
	return stats, err
}

// pgTx adapts a pgx.Tx to the Tx interface.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetComparisonForUpdate(ctx context.Context, id int64) (*Comparison, error) {
	return getComparison(ctx, t.tx, id, true)
}

func (t *pgTx) FindCandidateForUpdate(ctx context.Context, id int64) (*Candidate, error) {
	return findCandidate(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateCandidateRating(ctx context.Context, id int64, mu, sigma float64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE candidates SET mu = $2, sigma = $3, updated_at = now()
		WHERE id = $1`, id, mu, sigma)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	return nil
}

func (t *pgTx) UpdateComparisonOutcome(ctx context.Context, id int64, expected, outcome Outcome) (*Comparison, error) {
	row := t.tx.QueryRow(ctx, `
		UPDATE comparisons SET outcome = $3, decided_at = now()
		WHERE id = $1 AND outcome = $2
		RETURNING `+comparisonColumns,
		id, string(expected), string(outcome),
	)
	c, err := scanComparison(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM comparisons WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("comparison %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("comparison %d: %w", id, ErrConflict)
	}
	return c, err
}

func findCandidate(ctx context.Context, q querier, id int64, forUpdate bool) (*Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanCandidate(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	return c, err
}

func getComparison(ctx context.Context, q querier, id int64, forUpdate bool) (*Comparison, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanComparison(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("comparison %d: %w", id, ErrNotFound)
	}
	return c, err
}

func scanCandidate(row pgx.Row) (*Candidate, error) {
	c := &Candidate{}
	var profilePic *string
	err := row.Scan(&c.ID, &c.Name, &profilePic, &c.Age, &c.Gender,
		&c.Mu, &c.Sigma, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if profilePic != nil {
		c.ProfilePic = *profilePic
	}
	return c, nil
}

func scanComparison(row pgx.Row) (*Comparison, error) {
	c := &Comparison{}
	err := row.Scan(&c.ID, &c.EvaluatorID, &c.MaleID, &c.FemaleID,
		&c.Outcome, &c.CreatedAt, &c.DecidedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
