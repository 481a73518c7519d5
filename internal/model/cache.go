package model

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// PredictionCache provides in-memory caching for model predictions.
// Hit and miss counters are atomics so concurrent readers never race.
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction
func (pc *PredictionCache) Get(gameID string) *Prediction {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if result, found := pc.cache.Get(gameID); found {
		if prediction, ok := result.(*Prediction); ok {
			pc.hitCount.Add(1)
			pc.updateMetrics()
			return prediction
		}
	}

	pc.missCount.Add(1)
	pc.updateMetrics()
	return nil
}

// Set stores a prediction in cache
func (pc *PredictionCache) Set(gameID string, prediction *Prediction) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}

	pc.cache.Set(gameID, prediction, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount.Store(0)
	pc.missCount.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount.Load()
	misses = pc.missCount.Load()
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}

func (pc *PredictionCache) updateMetrics() {
	_, _, ratio := pc.Stats()
	metrics.PredictionCacheHitRate.Set(ratio)
}

// predictor is the slice of Client used by CachedClient
type predictor interface {
	Predict(ctx context.Context, game models.Game) (*Prediction, error)
}

// CachedClient wraps a model client with prediction caching
type CachedClient struct {
	client predictor
	cache  *PredictionCache
}

// NewCachedClient creates a caching wrapper around a model client
func NewCachedClient(client predictor, cache *PredictionCache) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
	}
}

// Predict returns the cached prediction for a game, fetching on miss
func (cc *CachedClient) Predict(ctx context.Context, game models.Game) (*Prediction, error) {
	if cached := cc.cache.Get(game.GameID); cached != nil {
		return cached, nil
	}

	prediction, err := cc.client.Predict(ctx, game)
	if err != nil {
		return nil, err
	}

	cc.cache.Set(game.GameID, prediction)
	return prediction, nil
}

// WinProbability returns the modeled probability for one side of a game
func (cc *CachedClient) WinProbability(ctx context.Context, game models.Game, side models.Side) (float64, *float64, error) {
	prediction, err := cc.Predict(ctx, game)
	if err != nil {
		return 0, nil, err
	}

	switch side {
	case models.SideAway:
		return prediction.AwayWinProbability, prediction.Confidence, nil
	default:
		return prediction.HomeWinProbability, prediction.Confidence, nil
	}
}
