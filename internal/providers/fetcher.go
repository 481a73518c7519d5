package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// Fetcher fans out odds requests to all configured providers and merges
// the results into the quote cache. A provider failure degrades coverage
// but never fails the whole fetch.
type Fetcher struct {
	providers []Provider
	cache     *QuoteCache
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewFetcher creates a new fetcher over the given providers
func NewFetcher(providers []Provider, cache *QuoteCache, timeout time.Duration, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		providers: providers,
		cache:     cache,
		timeout:   timeout,
		logger:    logger,
	}
}

type fetchResult struct {
	provider string
	games    []GameOdds
	err      error
}

// FetchAll retrieves odds for a sport from every enabled provider
// concurrently. It returns the merged per-game odds and an error only
// when every provider failed.
func (f *Fetcher) FetchAll(ctx context.Context, sport string) ([]GameOdds, error) {
	results := make(chan fetchResult, len(f.providers))

	var wg sync.WaitGroup
	for _, provider := range f.providers {
		if !provider.IsEnabled() {
			continue
		}

		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			start := time.Now()
			games, err := p.FetchOdds(fetchCtx, sport)
			metrics.ProviderFetchDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

			results <- fetchResult{provider: p.Name(), games: games, err: err}
		}(provider)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	merged := make(map[string]*GameOdds)
	order := make([]string, 0)
	healthy := 0
	attempted := 0

	for result := range results {
		attempted++
		if result.err != nil {
			metrics.ProviderErrorsTotal.WithLabelValues(result.provider).Inc()
			f.logger.WithFields(logrus.Fields{
				"provider": result.provider,
				"sport":    sport,
				"error":    result.err.Error(),
			}).Warn("Provider fetch failed")
			continue
		}

		healthy++
		for _, game := range result.games {
			existing, ok := merged[game.Game.GameID]
			if !ok {
				copied := game
				copied.Quotes = append([]models.Quote(nil), game.Quotes...)
				merged[game.Game.GameID] = &copied
				order = append(order, game.Game.GameID)
				continue
			}
			existing.Quotes = append(existing.Quotes, game.Quotes...)
		}
	}

	metrics.ProvidersHealthy.Set(float64(healthy))

	if attempted > 0 && healthy == 0 {
		return nil, fmt.Errorf("all %d providers failed for sport %s", attempted, sport)
	}

	games := make([]GameOdds, 0, len(order))
	for _, gameID := range order {
		game := merged[gameID]
		f.cache.Put(game.Game.GameID, game.Market, game.Quotes)
		games = append(games, *game)
	}
	metrics.GamesTracked.Set(float64(len(games)))

	f.logger.WithFields(logrus.Fields{
		"sport":             sport,
		"games":             len(games),
		"providers_healthy": healthy,
	}).Info("Fetched provider odds")

	return games, nil
}

// Cache returns the quote cache populated by this fetcher
func (f *Fetcher) Cache() *QuoteCache {
	return f.cache
}
