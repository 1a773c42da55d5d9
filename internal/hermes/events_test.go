package hermes

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "hotlikeme.comparison.12.created", SubjectComparisonCreated("12"))
	assert.Equal(t, "hotlikeme.comparison.12.decided", SubjectComparisonDecided("12"))
	assert.Equal(t, "hotlikeme.candidate.7.rated", SubjectCandidateRated("7"))
}

func TestEnvelopeIsFlattened(t *testing.T) {
	ev := ComparisonDecidedEvent{
		Envelope:     NewEnvelope(),
		ComparisonID: 12,
		EvaluatorID:  7,
		MaleID:       3,
		FemaleID:     9,
		Outcome:      "male",
	}
	require.NotEqual(t, uuid.Nil, ev.EventID)

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, ev.EventID.String(), raw["event_id"])
	assert.Equal(t, "male", raw["outcome"])
	assert.EqualValues(t, 3, raw["male_id"])
}
