// Package risk classifies and filters candidate parlays against named risk
// tiers.
package risk

import (
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// The four tiers are fixed product policy. Thresholds are configuration, not
// load-bearing algorithmic constants.
var tiers = map[models.RiskLevel]models.RiskTier{
	models.RiskConservative: {
		Name:            models.RiskConservative,
		MinProbability:  0.40,
		MaxCorrelation:  0.20,
		MinConfidence:   0.70,
		KellyMultiplier: 0.25,
		MaxLegs:         3,
	},
	models.RiskModerate: {
		Name:            models.RiskModerate,
		MinProbability:  0.25,
		MaxCorrelation:  0.35,
		MinConfidence:   0.60,
		KellyMultiplier: 0.50,
		MaxLegs:         4,
	},
	models.RiskAggressive: {
		Name:            models.RiskAggressive,
		MinProbability:  0.12,
		MaxCorrelation:  0.50,
		MinConfidence:   0.50,
		KellyMultiplier: 0.75,
		MaxLegs:         5,
	},
	models.RiskYolo: {
		Name:            models.RiskYolo,
		MinProbability:  0.05,
		MaxCorrelation:  0.80,
		MinConfidence:   0.35,
		KellyMultiplier: 1.00,
		MaxLegs:         6,
	},
}

// TierFor returns the threshold record for the named tier.
func TierFor(level models.RiskLevel) (models.RiskTier, error) {
	tier, ok := tiers[level]
	if !ok {
		return models.RiskTier{}, models.ErrUnknownRiskTier
	}
	return tier, nil
}

// AllTiers returns the four tiers ordered from most to least conservative.
func AllTiers() []models.RiskTier {
	return []models.RiskTier{
		tiers[models.RiskConservative],
		tiers[models.RiskModerate],
		tiers[models.RiskAggressive],
		tiers[models.RiskYolo],
	}
}
