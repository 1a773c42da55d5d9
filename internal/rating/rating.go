// Package rating implements the two-player Gaussian skill update used to
// turn pairwise judgments into (mu, sigma) estimates.
//
// The update follows TrueSkill for a single 1-vs-1 match without a dynamics
// term, so sigma never grows:
//   - c is the combined standard deviation of the performance difference.
//   - t is the mean difference scaled by c.
//   - eps is the draw margin scaled by c.
//   - v and w are the mean and variance corrections of the truncated
//     Gaussian for a win or a draw.
package rating

import (
	"errors"
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

// ErrInvalidOutcome is returned when asked to apply a non-terminal outcome.
var ErrInvalidOutcome = errors.New("outcome must be one of equal, male, female")

// Rating is a candidate's skill belief.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Model applies outcomes under a fixed Environment. It is stateless and
// safe for concurrent use.
type Model struct {
	env        Environment
	drawMargin float64
}

// NewModel validates env and precomputes the draw margin.
func NewModel(env Environment) (*Model, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("rating environment: %w", err)
	}
	return &Model{env: env, drawMargin: drawMargin(env.DrawProbability, env.Beta)}, nil
}

func (m *Model) Environment() Environment { return m.env }

// ApplyOutcome returns the posterior ratings of the male and female
// participants of a comparison decided with outcome.
func (m *Model) ApplyOutcome(male, female Rating, outcome store.Outcome) (Rating, Rating, error) {
	switch outcome {
	case store.OutcomeMale:
		w, l := m.Rate(male, female, false)
		return w, l, nil
	case store.OutcomeFemale:
		w, l := m.Rate(female, male, false)
		return l, w, nil
	case store.OutcomeEqual:
		a, b := m.Rate(male, female, true)
		return a, b, nil
	}
	return male, female, fmt.Errorf("%w: got %q", ErrInvalidOutcome, outcome)
}

// Rate updates a winner and a loser. When drawn is true the order of the
// arguments does not matter.
func (m *Model) Rate(winner, loser Rating, drawn bool) (Rating, Rating) {
	c2 := 2*m.env.Beta*m.env.Beta + winner.Sigma*winner.Sigma + loser.Sigma*loser.Sigma
	c := math.Sqrt(c2)
	t := (winner.Mu - loser.Mu) / c
	eps := m.drawMargin / c

	var v, w float64
	if drawn {
		v, w = vDraw(t, eps), wDraw(t, eps)
	} else {
		v, w = vWin(t, eps), wWin(t, eps)
	}

	newWinner := Rating{
		Mu:    winner.Mu + winner.Sigma*winner.Sigma/c*v,
		Sigma: m.shrink(winner.Sigma, c2, w),
	}
	newLoser := Rating{
		Mu:    loser.Mu - loser.Sigma*loser.Sigma/c*v,
		Sigma: m.shrink(loser.Sigma, c2, w),
	}
	return newWinner, newLoser
}

// Quality is the probability of a draw between a and b under the model.
// Close to 1 means an even pairing.
func (m *Model) Quality(a, b Rating) float64 {
	b2 := 2 * m.env.Beta * m.env.Beta
	c2 := b2 + a.Sigma*a.Sigma + b.Sigma*b.Sigma
	d := a.Mu - b.Mu
	return math.Sqrt(b2/c2) * math.Exp(-d*d/(2*c2))
}

// shrink never returns more than sigma and never less than the floor unless
// sigma already was below it.
func (m *Model) shrink(sigma, c2, w float64) float64 {
	factor := 1 - sigma*sigma/c2*w
	if factor < 0 {
		factor = 0
	}
	s := sigma * math.Sqrt(factor)
	if s < m.env.MinSigma {
		s = m.env.MinSigma
	}
	if s > sigma {
		s = sigma
	}
	return s
}

func drawMargin(p, beta float64) float64 {
	return ppf((p+1)/2) * math.Sqrt2 * beta
}
