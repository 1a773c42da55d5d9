package store

import (
	"context"
	"fmt"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

type Outcome string

const (
	OutcomeOpen   Outcome = "open"
	OutcomeEqual  Outcome = "equal"
	OutcomeMale   Outcome = "male"
	OutcomeFemale Outcome = "female"
)

// Terminal reports whether o is a decided outcome.
func (o Outcome) Terminal() bool {
	return o == OutcomeEqual || o == OutcomeMale || o == OutcomeFemale
}

func (o Outcome) Valid() bool {
	return o == OutcomeOpen || o.Terminal()
}

const (
	DefaultMu    = 25.0
	DefaultSigma = DefaultMu / 3
)

type Candidate struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	Age        *int      `json:"age,omitempty"`
	Gender     Gender    `json:"gender"`
	Mu         float64   `json:"mu"`
	Sigma      float64   `json:"sigma"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Comparison struct {
	ID          int64      `json:"id"`
	EvaluatorID int64      `json:"evaluator_id"`
	MaleID      int64      `json:"male_id"`
	FemaleID    int64      `json:"female_id"`
	Outcome     Outcome    `json:"outcome"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// Pair identifies a comparison within one evaluator's history.
type Pair struct {
	MaleID   int64
	FemaleID int64
}

func (c *Comparison) Pair() Pair {
	return Pair{MaleID: c.MaleID, FemaleID: c.FemaleID}
}

type Stats struct {
	Candidates int `json:"candidates"`
	Open       int `json:"open"`
	Decided    int `json:"decided"`
	MaleWins   int `json:"male_wins"`
	FemaleWins int `json:"female_wins"`
	Draws      int `json:"draws"`
	Evaluators int `json:"evaluators"`
}

// Tx is the set of operations available inside Store.InTx. Reads through a
// Tx that end in ForUpdate hold row locks until the transaction ends.
type Tx interface {
	GetComparisonForUpdate(ctx context.Context, id int64) (*Comparison, error)
	FindCandidateForUpdate(ctx context.Context, id int64) (*Candidate, error)
	UpdateCandidateRating(ctx context.Context, id int64, mu, sigma float64) error
	// UpdateComparisonOutcome sets the outcome only if the current value
	// equals expected, returning ErrConflict otherwise.
	UpdateComparisonOutcome(ctx context.Context, id int64, expected, outcome Outcome) (*Comparison, error)
}

type Store interface {
	CreateCandidate(ctx context.Context, c *Candidate) error
	FindCandidate(ctx context.Context, id int64) (*Candidate, error)
	// ListCandidates returns candidates ordered by id. excludeID of 0 excludes
	// nobody; a nil gender matches both.
	ListCandidates(ctx context.Context, excludeID int64, gender *Gender) ([]*Candidate, error)

	GetComparison(ctx context.Context, id int64) (*Comparison, error)
	// ListComparisons returns every comparison for the evaluator ordered by id.
	ListComparisons(ctx context.Context, evaluatorID int64) ([]*Comparison, error)
	// InsertComparison creates an open comparison. It returns ErrDuplicate
	// when the (evaluator, male, female) triple already exists.
	InsertComparison(ctx context.Context, evaluatorID, maleID, femaleID int64) (*Comparison, error)

	// InTx runs fn in a single transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetStats(ctx context.Context) (*Stats, error)

	Close() error
}
