package risk

import (
	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// Rejection reasons reported by the filter.
const (
	ReasonLowProbability  = "probability_below_minimum"
	ReasonHighCorrelation = "correlation_above_maximum"
	ReasonLowConfidence   = "leg_confidence_below_minimum"
	ReasonTooManyLegs     = "leg_count_above_maximum"
	ReasonTooFewLegs      = "leg_count_below_minimum"
)

// Filter applies tier thresholds to candidate parlays. Filtering is a pure
// predicate evaluated once per candidate; rejected parlays are dropped, not
// mutated, and never retried.
type Filter struct {
	logger *logrus.Logger
}

// NewFilter creates a risk filter
func NewFilter(logger *logrus.Logger) *Filter {
	return &Filter{logger: logger}
}

// Check evaluates one candidate against a tier. All threshold boundaries are
// inclusive: a parlay sitting exactly on min_probability is accepted. The
// empty reason string means the candidate passed.
func (f *Filter) Check(parlay *models.Parlay, tier models.RiskTier) (bool, string) {
	if parlay.LegCount() < 2 {
		return false, ReasonTooFewLegs
	}
	if parlay.LegCount() > tier.MaxLegs {
		return false, ReasonTooManyLegs
	}
	if parlay.CombinedProbability < tier.MinProbability {
		return false, ReasonLowProbability
	}
	if parlay.CorrelationScore > tier.MaxCorrelation {
		return false, ReasonHighCorrelation
	}
	for _, leg := range parlay.Legs {
		if leg.Assessment.Confidence < tier.MinConfidence {
			return false, ReasonLowConfidence
		}
	}
	return true, ""
}

// Apply filters candidates against the tier and returns the survivors.
func (f *Filter) Apply(candidates []models.Parlay, tier models.RiskTier) []models.Parlay {
	accepted := make([]models.Parlay, 0, len(candidates))
	for i := range candidates {
		ok, reason := f.Check(&candidates[i], tier)
		if !ok {
			metrics.ParlaysFilteredTotal.WithLabelValues(string(tier.Name), reason).Inc()
			f.logger.WithFields(logrus.Fields{
				"parlay_id": candidates[i].ID,
				"tier":      tier.Name,
				"reason":    reason,
			}).Debug("Parlay rejected by risk filter")
			continue
		}
		accepted = append(accepted, candidates[i])
	}
	return accepted
}
