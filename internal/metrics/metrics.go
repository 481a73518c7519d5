// Package metrics provides the centralized Prometheus metrics registry for
// the odds engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	QuotesNormalizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "quotes_normalized_total",
		Help:      "Total number of provider quotes fed through normalization",
	})
	EvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "evaluations_total",
		Help:      "Total number of value assessments produced",
	})
	ValueBetsFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "value_bets_found_total",
		Help:      "Total number of assessments that cleared the edge threshold",
	})
	ParlaysBuiltTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "parlays_built_total",
		Help:      "Total number of candidate parlays combined",
	})
	ParlaysFilteredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "parlays_filtered_total",
		Help:      "Total number of candidate parlays rejected by the risk filter",
	}, []string{"tier", "reason"})
	GamesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "games_skipped_total",
		Help:      "Total number of games dropped from batch requests",
	})
	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "provider_errors_total",
		Help:      "Total number of provider fetch failures",
	}, []string{"provider"})
	StreamReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_engine",
		Name:      "stream_reconnects_total",
		Help:      "Total number of quote stream reconnect attempts",
	})
)

// Gauge metrics
var (
	ProvidersHealthy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_engine",
		Name:      "providers_healthy",
		Help:      "Number of providers currently responding",
	})
	GamesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_engine",
		Name:      "games_tracked",
		Help:      "Number of games with cached canonical odds",
	})
	QuoteCacheHitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_engine",
		Name:      "quote_cache_hit_rate",
		Help:      "Hit rate of the quote cache",
	})
	PredictionCacheHitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_engine",
		Name:      "prediction_cache_hit_rate",
		Help:      "Hit rate of the model prediction cache",
	})
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "odds_engine",
		Name:      "request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	ProviderFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "odds_engine",
		Name:      "provider_fetch_duration_seconds",
		Help:      "Duration of per-provider odds fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	ParlayOptimizationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odds_engine",
		Name:      "parlay_optimization_duration_seconds",
		Help:      "Duration of parlay optimization runs in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(QuotesNormalizedTotal)
		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(ValueBetsFoundTotal)
		registry.MustRegister(ParlaysBuiltTotal)
		registry.MustRegister(ParlaysFilteredTotal)
		registry.MustRegister(GamesSkippedTotal)
		registry.MustRegister(ProviderErrorsTotal)
		registry.MustRegister(StreamReconnectsTotal)

		registry.MustRegister(ProvidersHealthy)
		registry.MustRegister(GamesTracked)
		registry.MustRegister(QuoteCacheHitRate)
		registry.MustRegister(PredictionCacheHitRate)

		registry.MustRegister(RequestDuration)
		registry.MustRegister(ProviderFetchDuration)
		registry.MustRegister(ParlayOptimizationDuration)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}
