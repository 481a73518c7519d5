package providers

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// QuoteCache provides in-memory caching of provider quotes keyed by
// game and market. The freshest fetch for each key wins outright.
// Hit and miss counters are atomics so concurrent readers never block
// or race on them.
type QuoteCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewQuoteCache creates a new quote cache
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func quoteCacheKey(gameID string, market models.MarketType) string {
	return fmt.Sprintf("%s:%s", gameID, market)
}

// Put stores the quotes for one game and market, replacing any prior entry
func (qc *QuoteCache) Put(gameID string, market models.MarketType, quotes []models.Quote) {
	qc.cache.Set(quoteCacheKey(gameID, market), quotes, qc.ttl)
}

// Append merges new quotes into an existing entry, keeping prior providers
func (qc *QuoteCache) Append(gameID string, market models.MarketType, quotes []models.Quote) {
	key := quoteCacheKey(gameID, market)

	qc.mu.Lock()
	defer qc.mu.Unlock()

	existing := make([]models.Quote, 0, len(quotes))
	if cached, found := qc.cache.Get(key); found {
		if prior, ok := cached.([]models.Quote); ok {
			existing = append(existing, prior...)
		}
	}
	qc.cache.Set(key, append(existing, quotes...), qc.ttl)
}

// QuotesFor returns the cached quotes for a game and market, if any
func (qc *QuoteCache) QuotesFor(gameID string, market models.MarketType) []models.Quote {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	if cached, found := qc.cache.Get(quoteCacheKey(gameID, market)); found {
		if quotes, ok := cached.([]models.Quote); ok {
			qc.hitCount.Add(1)
			qc.updateMetrics()
			return quotes
		}
	}

	qc.missCount.Add(1)
	qc.updateMetrics()
	return nil
}

// Clear flushes the entire cache
func (qc *QuoteCache) Clear() {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	qc.cache.Flush()
	qc.hitCount.Store(0)
	qc.missCount.Store(0)
}

// Stats returns cache statistics
func (qc *QuoteCache) Stats() (hits, misses uint64, ratio float64) {
	hits = qc.hitCount.Load()
	misses = qc.missCount.Load()
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (qc *QuoteCache) ItemCount() int {
	return qc.cache.ItemCount()
}

func (qc *QuoteCache) updateMetrics() {
	_, _, ratio := qc.Stats()
	metrics.QuoteCacheHitRate.Set(ratio)
}
