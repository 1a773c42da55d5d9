package rating

import (
	"fmt"

	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

// Environment holds the constants of the skill model.
type Environment struct {
	Mu              float64
	Sigma           float64
	Beta            float64
	DrawProbability float64
	MinSigma        float64
}

// DefaultEnvironment returns the classic TrueSkill constants: mu 25,
// sigma 25/3, beta sigma/2 and a 10% draw probability.
func DefaultEnvironment() Environment {
	return Environment{
		Mu:              store.DefaultMu,
		Sigma:           store.DefaultSigma,
		Beta:            store.DefaultSigma / 2,
		DrawProbability: 0.10,
		MinSigma:        0.01,
	}
}

// Validate checks that the environment describes a usable model.
func (e Environment) Validate() error {
	if e.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %f", e.Sigma)
	}
	if e.Beta <= 0 {
		return fmt.Errorf("beta must be positive, got %f", e.Beta)
	}
	if e.DrawProbability < 0 || e.DrawProbability >= 1 {
		return fmt.Errorf("draw probability must be in [0, 1), got %f", e.DrawProbability)
	}
	if e.MinSigma < 0 || e.MinSigma >= e.Sigma {
		return fmt.Errorf("min sigma must be in [0, sigma), got %f", e.MinSigma)
	}
	return nil
}

// Initial returns the prior assigned to a new candidate.
func (e Environment) Initial() Rating {
	return Rating{Mu: e.Mu, Sigma: e.Sigma}
}
