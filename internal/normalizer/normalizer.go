// Package normalizer merges per-provider quotes into canonical odds records.
package normalizer

import (
	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/oddsmath"
)

// Normalizer reconciles heterogeneous provider quotes for one game/market
// into a single CanonicalOdds record. Every call is a pure recompute of its
// input list; no state is kept between calls, so a partial update can never
// leave a stale side behind.
type Normalizer struct {
	logger *logrus.Logger
}

// New creates a new Normalizer
func New(logger *logrus.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize builds the canonical odds record for one game/market from the
// raw provider quotes. Sides with no quotes are omitted rather than priced
// synthetically. A game with zero usable quotes returns ErrGameDropped so
// batch callers can skip it without failing the batch.
func (n *Normalizer) Normalize(gameID string, marketType models.MarketType, quotes []models.Quote) (models.CanonicalOdds, error) {
	best := make(map[models.Side]models.Quote)
	providers := make(map[string]bool)

	for _, q := range quotes {
		if q.AmericanOdds == 0 {
			n.logger.WithFields(logrus.Fields{
				"game_id":  gameID,
				"provider": q.ProviderID,
				"side":     q.Side,
			}).Warn("Dropping quote with zero American odds")
			continue
		}

		current, exists := best[q.Side]
		if !exists || betterQuote(q, current) {
			best[q.Side] = q
		}
		providers[q.ProviderID] = true
	}

	if len(best) == 0 {
		return models.CanonicalOdds{}, models.ErrGameDropped
	}

	canonical := models.CanonicalOdds{
		GameID:           gameID,
		MarketType:       marketType,
		BestQuotePerSide: best,
		ProviderCount:    len(providers),
	}

	metrics.QuotesNormalizedTotal.Add(float64(len(quotes)))
	n.logger.WithFields(logrus.Fields{
		"game_id":        gameID,
		"market_type":    marketType,
		"sides":          len(best),
		"provider_count": canonical.ProviderCount,
	}).Debug("Quotes normalized")

	return canonical, nil
}

// NormalizeBatch normalizes quotes for many games, keyed by game ID. Games
// whose entire quote set is empty or unusable are dropped from the output;
// the second return value counts them.
func (n *Normalizer) NormalizeBatch(marketType models.MarketType, quotesByGame map[string][]models.Quote) (map[string]models.CanonicalOdds, int) {
	out := make(map[string]models.CanonicalOdds, len(quotesByGame))
	skipped := 0
	for gameID, quotes := range quotesByGame {
		canonical, err := n.Normalize(gameID, marketType, quotes)
		if err != nil {
			skipped++
			continue
		}
		out[gameID] = canonical
	}
	return out, skipped
}

// betterQuote reports whether candidate is a better price for a bettor than
// current: strictly higher decimal odds, or an equal price captured more
// recently.
func betterQuote(candidate, current models.Quote) bool {
	candDecimal, err := oddsmath.AmericanToDecimal(candidate.AmericanOdds)
	if err != nil {
		return false
	}
	currDecimal, err := oddsmath.AmericanToDecimal(current.AmericanOdds)
	if err != nil {
		return true
	}
	if candDecimal != currDecimal {
		return candDecimal > currDecimal
	}
	return candidate.CapturedAt.After(current.CapturedAt)
}
