// Package engine supplies open comparisons to evaluators and applies their
// outcomes to candidate ratings.
package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/MikeSquared-Agency/hotlikeme/internal/hermes"
	"github.com/MikeSquared-Agency/hotlikeme/internal/metrics"
	"github.com/MikeSquared-Agency/hotlikeme/internal/rating"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

const (
	DefaultTarget = 10
	DefaultMax    = 100
)

type Option func(*Engine)

// WithSeed makes pair sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = newLockedRand(seed) }
}

// WithMaxTarget caps the target count a caller may request.
func WithMaxTarget(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTarget = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine holds no per-evaluator state; every call re-reads the store.
type Engine struct {
	store     store.Store
	model     *rating.Model
	hermes    hermes.Client
	metrics   *metrics.Metrics
	logger    *slog.Logger
	rng       *lockedRand
	maxTarget int
}

// New builds an Engine. h may be nil to run without events.
func New(s store.Store, model *rating.Model, h hermes.Client, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		model:     model,
		hermes:    h,
		logger:    logger,
		rng:       newLockedRand(rand.Uint64()),
		maxTarget: DefaultMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Model() *rating.Model { return e.model }

func (e *Engine) publish(ctx context.Context, subject string, data any) {
	if e.hermes == nil {
		return
	}
	if err := e.hermes.Publish(ctx, subject, data); err != nil {
		e.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }
