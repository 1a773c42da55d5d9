package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(DefaultEnvironment())
	require.NoError(t, err)
	return m
}

func TestDefaultEnvironmentValid(t *testing.T) {
	env := DefaultEnvironment()
	if err := env.Validate(); err != nil {
		t.Errorf("default environment invalid: %v", err)
	}
	if env.Initial() != (Rating{Mu: 25, Sigma: 25.0 / 3}) {
		t.Errorf("unexpected initial rating %+v", env.Initial())
	}
}

func TestEnvironmentValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Environment)
	}{
		{"zero sigma", func(e *Environment) { e.Sigma = 0 }},
		{"negative beta", func(e *Environment) { e.Beta = -1 }},
		{"draw probability one", func(e *Environment) { e.DrawProbability = 1 }},
		{"negative draw probability", func(e *Environment) { e.DrawProbability = -0.1 }},
		{"floor above sigma", func(e *Environment) { e.MinSigma = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := DefaultEnvironment()
			tt.modify(&env)
			assert.Error(t, env.Validate())
			_, err := NewModel(env)
			assert.Error(t, err)
		})
	}
}

func TestMaleWinFromDefaults(t *testing.T) {
	m := newTestModel(t)
	prior := DefaultEnvironment().Initial()

	male, female, err := m.ApplyOutcome(prior, prior, store.OutcomeMale)
	require.NoError(t, err)

	assert.Greater(t, male.Mu, 25.0)
	assert.Less(t, female.Mu, 25.0)
	assert.Less(t, male.Sigma, prior.Sigma)
	assert.Less(t, female.Sigma, prior.Sigma)

	// Reference values of a 1-vs-1 TrueSkill win with a 10% draw probability.
	assert.InDelta(t, 29.396, male.Mu, 0.01)
	assert.InDelta(t, 20.604, female.Mu, 0.01)
	assert.InDelta(t, 7.171, male.Sigma, 0.01)
	assert.InDelta(t, 7.171, female.Sigma, 0.01)
}

func TestFemaleWinMirrorsMaleWin(t *testing.T) {
	m := newTestModel(t)
	prior := DefaultEnvironment().Initial()

	mMale, mFemale, err := m.ApplyOutcome(prior, prior, store.OutcomeMale)
	require.NoError(t, err)
	fMale, fFemale, err := m.ApplyOutcome(prior, prior, store.OutcomeFemale)
	require.NoError(t, err)

	assert.InDelta(t, mMale.Mu, fFemale.Mu, 1e-9)
	assert.InDelta(t, mFemale.Mu, fMale.Mu, 1e-9)
}

func TestDrawSymmetry(t *testing.T) {
	m := newTestModel(t)
	prior := DefaultEnvironment().Initial()

	a, b, err := m.ApplyOutcome(prior, prior, store.OutcomeEqual)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 25.0, a.Mu)
	assert.Less(t, a.Sigma, prior.Sigma)
}

func TestDrawPullsMeansTogether(t *testing.T) {
	m := newTestModel(t)
	high := Rating{Mu: 30, Sigma: 6}
	low := Rating{Mu: 20, Sigma: 6}

	newHigh, newLow := m.Rate(high, low, true)
	assert.Less(t, newHigh.Mu, high.Mu)
	assert.Greater(t, newLow.Mu, low.Mu)
	assert.Greater(t, newHigh.Mu, newLow.Mu, "a draw must not swap the order")

	// Argument order does not matter for draws.
	swappedLow, swappedHigh := m.Rate(low, high, true)
	assert.InDelta(t, newHigh.Mu, swappedHigh.Mu, 1e-9)
	assert.InDelta(t, newLow.Mu, swappedLow.Mu, 1e-9)
}

func TestOpenOutcomeRejected(t *testing.T) {
	m := newTestModel(t)
	prior := DefaultEnvironment().Initial()

	male, female, err := m.ApplyOutcome(prior, prior, store.OutcomeOpen)
	assert.ErrorIs(t, err, ErrInvalidOutcome)
	assert.Equal(t, prior, male)
	assert.Equal(t, prior, female)

	_, _, err = m.ApplyOutcome(prior, prior, store.Outcome("both"))
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestMonotonicityAcrossPriors(t *testing.T) {
	m := newTestModel(t)
	priors := []Rating{
		{Mu: 25, Sigma: 8.333},
		{Mu: 40, Sigma: 1},
		{Mu: 5, Sigma: 0.5},
		{Mu: 60, Sigma: 12},
		{Mu: -10, Sigma: 3},
	}
	for _, w := range priors {
		for _, l := range priors {
			nw, nl := m.Rate(w, l, false)
			if nw.Mu < w.Mu {
				t.Errorf("winner mu decreased: %+v vs %+v -> %+v", w, l, nw)
			}
			if nl.Mu > l.Mu {
				t.Errorf("loser mu increased: %+v vs %+v -> %+v", w, l, nl)
			}
			if nw.Sigma > w.Sigma || nl.Sigma > l.Sigma {
				t.Errorf("sigma grew: %+v, %+v -> %+v, %+v", w, l, nw, nl)
			}
			if math.IsNaN(nw.Mu) || math.IsNaN(nl.Mu) || math.IsNaN(nw.Sigma) || math.IsNaN(nl.Sigma) {
				t.Errorf("NaN rating for %+v vs %+v", w, l)
			}
		}
	}
}

func TestSigmaShrinksOverManyComparisons(t *testing.T) {
	m := newTestModel(t)
	a := DefaultEnvironment().Initial()
	b := DefaultEnvironment().Initial()

	prev := a.Sigma
	for i := 0; i < 200; i++ {
		if i%3 == 0 {
			b, a = m.Rate(b, a, false)
		} else {
			a, b = m.Rate(a, b, false)
		}
		if a.Sigma > prev {
			t.Fatalf("sigma increased at step %d: %f > %f", i, a.Sigma, prev)
		}
		prev = a.Sigma
	}
	assert.GreaterOrEqual(t, a.Sigma, DefaultEnvironment().MinSigma)
	assert.Greater(t, a.Mu, b.Mu)
}

func TestQuality(t *testing.T) {
	m := newTestModel(t)
	prior := DefaultEnvironment().Initial()

	even := m.Quality(prior, prior)
	uneven := m.Quality(prior, Rating{Mu: 40, Sigma: prior.Sigma})
	assert.InDelta(t, 0.447, even, 0.001)
	assert.Less(t, uneven, even)
}

func TestHotnessScale(t *testing.T) {
	s := NewScale([]float64{20, 25, 30})
	assert.Equal(t, 0.0, s.Hotness(20))
	assert.Equal(t, 5.0, s.Hotness(25))
	assert.Equal(t, 10.0, s.Hotness(30))
	assert.Equal(t, 10.0, s.Hotness(31))

	flat := NewScale([]float64{25, 25})
	assert.Equal(t, HotnessMidpoint, flat.Hotness(25))

	empty := NewScale(nil)
	assert.Equal(t, HotnessMidpoint, empty.Hotness(12))
}
