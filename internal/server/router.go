package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
)

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestDuration)

	origins := s.cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evaluate/moneyline", s.handleEvaluateMoneyline)
		r.Post("/parlays/optimize", s.handleOptimizeParlays)
		r.Get("/risk/tiers", s.handleRiskTiers)

		r.Route("/model/train", func(r chi.Router) {
			r.Post("/", s.handleSubmitTraining)
			r.Get("/", s.handleListTrainingJobs)
			r.Get("/{jobID}/status", s.handleTrainingStatus)
			r.Post("/{jobID}/status", s.handleUpdateTrainingStatus)
		})
	})

	return r
}

// requestDuration records per-route request latency. The route pattern is
// resolved after the handler runs so parameterized paths collapse to one
// label value.
func requestDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}
