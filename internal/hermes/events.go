package hermes

import (
	"time"

	"github.com/google/uuid"
)

// Envelope fields shared by every published event.
type Envelope struct {
	EventID    uuid.UUID `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEnvelope() Envelope {
	return Envelope{EventID: uuid.New(), OccurredAt: time.Now().UTC()}
}

type ComparisonCreatedEvent struct {
	Envelope
	ComparisonID int64 `json:"comparison_id"`
	EvaluatorID  int64 `json:"evaluator_id"`
	MaleID       int64 `json:"male_id"`
	FemaleID     int64 `json:"female_id"`
}

type ComparisonDecidedEvent struct {
	Envelope
	ComparisonID int64  `json:"comparison_id"`
	EvaluatorID  int64  `json:"evaluator_id"`
	MaleID       int64  `json:"male_id"`
	FemaleID     int64  `json:"female_id"`
	Outcome      string `json:"outcome"`
}

type CandidateRatedEvent struct {
	Envelope
	CandidateID   int64   `json:"candidate_id"`
	ComparisonID  int64   `json:"comparison_id"`
	PreviousMu    float64 `json:"previous_mu"`
	PreviousSigma float64 `json:"previous_sigma"`
	Mu            float64 `json:"mu"`
	Sigma         float64 `json:"sigma"`
}
