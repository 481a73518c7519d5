// Package evaluator scores one side of a market against a model-estimated
// true probability.
package evaluator

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/oddsmath"
)

// Rating thresholds on expected value per 100-unit stake. Fixed policy, not
// tunable per call.
const (
	ratingExcellentEV = 15.0
	ratingGoodEV      = 8.0
	ratingModerateEV  = 3.0
)

// Confidence fallback bounds when the caller supplies no confidence.
const (
	confidenceFloor = 0.35
	confidenceCeil  = 0.95
)

// referenceStake is the stake all expected values are normalized to.
const referenceStake = 100.0

// Evaluator produces ValueAssessments from canonical odds. Stateless; safe
// for concurrent use.
type Evaluator struct {
	kellyMultiplier float64
	logger          *logrus.Logger
}

// New creates an Evaluator using the given fractional Kelly multiplier.
func New(kellyMultiplier float64, logger *logrus.Logger) *Evaluator {
	if kellyMultiplier <= 0 {
		kellyMultiplier = 0.25
	}
	return &Evaluator{kellyMultiplier: kellyMultiplier, logger: logger}
}

// Evaluate scores one side of the canonical odds against trueProbability.
// confidence may be nil, in which case a deterministic fallback derived from
// the edge is used. The true probability comes from an upstream model; the
// evaluator never invents one.
func (e *Evaluator) Evaluate(canonical models.CanonicalOdds, side models.Side, trueProbability float64, confidence *float64) (models.ValueAssessment, error) {
	if trueProbability <= 0 || trueProbability >= 1 {
		return models.ValueAssessment{}, models.ErrInvalidProbability
	}

	quote, ok := canonical.QuoteFor(side)
	if !ok {
		return models.ValueAssessment{}, models.ErrNoQuoteForSide
	}

	implied, err := oddsmath.ImpliedProbability(quote.AmericanOdds)
	if err != nil {
		return models.ValueAssessment{}, err
	}
	decimal, err := oddsmath.AmericanToDecimal(quote.AmericanOdds)
	if err != nil {
		return models.ValueAssessment{}, err
	}

	edge := oddsmath.Edge(trueProbability, implied)

	ev, err := oddsmath.ExpectedValue(trueProbability, quote.AmericanOdds, referenceStake)
	if err != nil {
		return models.ValueAssessment{}, err
	}

	kelly, err := oddsmath.KellyFraction(trueProbability, quote.AmericanOdds, e.kellyMultiplier)
	if err != nil {
		return models.ValueAssessment{}, err
	}

	assessment := models.ValueAssessment{
		GameID:             canonical.GameID,
		Side:               side,
		AmericanOdds:       quote.AmericanOdds,
		DecimalOdds:        decimal,
		TrueProbability:    trueProbability,
		ImpliedProbability: implied,
		Edge:               edge,
		ExpectedValue:      ev,
		KellyFraction:      kelly,
		Confidence:         resolveConfidence(confidence, edge),
		Rating:             RateExpectedValue(ev),
	}

	metrics.EvaluationsTotal.Inc()
	e.logger.WithFields(logrus.Fields{
		"game_id":        assessment.GameID,
		"side":           assessment.Side,
		"american_odds":  assessment.AmericanOdds,
		"edge":           assessment.Edge,
		"expected_value": assessment.ExpectedValue,
		"kelly":          assessment.KellyFraction,
		"rating":         assessment.Rating,
	}).Debug("Side evaluated")

	return assessment, nil
}

// RateExpectedValue maps expected value per 100-unit stake onto the
// qualitative rating scale.
func RateExpectedValue(ev float64) models.ValueRating {
	switch {
	case ev >= ratingExcellentEV:
		return models.RatingExcellent
	case ev >= ratingGoodEV:
		return models.RatingGood
	case ev >= ratingModerateEV:
		return models.RatingModerate
	default:
		return models.RatingPoor
	}
}

// resolveConfidence uses the supplied confidence when present, clamped to
// [0,1]; otherwise derives a deterministic fallback from the edge.
func resolveConfidence(supplied *float64, edge float64) float64 {
	if supplied != nil {
		return oddsmath.Clamp(*supplied, 0, 1)
	}
	return math.Min(confidenceCeil, math.Max(confidenceFloor, math.Abs(edge)*2))
}
