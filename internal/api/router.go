package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/hotlikeme/internal/engine"
	"github.com/MikeSquared-Agency/hotlikeme/internal/metrics"
)

type RouterConfig struct {
	AdminToken    string
	DefaultTarget int
	// RateLimit is requests per minute per evaluator or remote address.
	RateLimit int
}

func NewRouter(e *engine.Engine, m *metrics.Metrics, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.DefaultTarget <= 0 {
		cfg.DefaultTarget = engine.DefaultTarget
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 120
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware(m))
	r.Use(RateLimitMiddleware(cfg.RateLimit))

	comparisons := NewComparisonsHandler(e, cfg.DefaultTarget)
	candidates := NewCandidatesHandler(e)
	admin := NewAdminHandler(e)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/evaluators/{id}/comparisons", comparisons.Supply)
		r.Get("/comparisons/{id}", comparisons.Get)
		r.Post("/comparisons/{id}/outcome", comparisons.Outcome)

		r.Get("/candidates", candidates.List)
		r.Get("/candidates/{id}", candidates.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Post("/candidates", candidates.Create)
			r.Get("/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
