// Package parlay combines independently evaluated legs into multi-leg
// parlays with correlation-aware probability and risk scoring.
package parlay

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/oddsmath"
)

// Leg count bounds for any parlay, before tier limits tighten the upper end.
const (
	MinLegs = 2
	MaxLegs = 6
)

// correlationDiscount scales how strongly correlation shrinks the naive
// independent-probability product. Correlation discounts, never zeroes.
const correlationDiscount = 0.5

// Risk score blend weights. Each term is monotone in its input direction:
// more legs up, lower confidence up, more correlation up.
const (
	riskWeightLegs        = 0.40
	riskWeightConfidence  = 0.35
	riskWeightCorrelation = 0.25
)

// referenceStake is the stake expected value is normalized to.
const referenceStake = 100.0

// Combiner builds parlays from scored legs. Stateless; every Combine call
// produces a fresh immutable Parlay.
type Combiner struct {
	timeWindow time.Duration
	logger     *logrus.Logger
}

// NewCombiner creates a parlay combiner using the default time-cluster window.
func NewCombiner(logger *logrus.Logger) *Combiner {
	return &Combiner{timeWindow: DefaultTimeWindow, logger: logger}
}

// NewCombinerWithWindow creates a combiner with a custom time-cluster window.
func NewCombinerWithWindow(window time.Duration, logger *logrus.Logger) *Combiner {
	if window <= 0 {
		window = DefaultTimeWindow
	}
	return &Combiner{timeWindow: window, logger: logger}
}

// Combine builds one parlay from the given legs under the active tier.
// Legs are copied by value; the caller's slice is never retained. hints may
// be nil.
func (c *Combiner) Combine(legs []models.Leg, tier models.RiskTier, hints []PairHint) (models.Parlay, error) {
	if len(legs) < MinLegs || len(legs) > MaxLegs || len(legs) > tier.MaxLegs {
		return models.Parlay{}, fmt.Errorf("%w: got %d legs, tier %s allows %d-%d",
			models.ErrLegCountOutOfRange, len(legs), tier.Name, MinLegs, tier.MaxLegs)
	}

	combinedDecimal := 1.0
	rawProbability := 1.0
	confidenceSum := 0.0
	for i := range legs {
		p := legs[i].Assessment.TrueProbability
		if p <= 0 || p >= 1 {
			return models.Parlay{}, fmt.Errorf("%w: leg %d", models.ErrMissingProbability, i)
		}
		d := legs[i].Assessment.DecimalOdds
		if d <= 1.0 {
			return models.Parlay{}, fmt.Errorf("%w: leg %d has decimal odds %.4f", models.ErrInvalidOdds, i, d)
		}
		combinedDecimal *= d
		rawProbability *= p
		confidenceSum += legs[i].Assessment.Confidence
	}
	avgConfidence := confidenceSum / float64(len(legs))

	correlation := correlationScore(legs, c.timeWindow, hints)
	combinedProbability := rawProbability * (1.0 - correlation*correlationDiscount)

	american, err := oddsmath.DecimalToAmerican(combinedDecimal)
	if err != nil {
		return models.Parlay{}, err
	}

	expectedValue := combinedProbability*combinedDecimal*referenceStake - referenceStake

	// Parlay stakes cap tighter than single bets; variance compounds.
	kelly := oddsmath.KellyFromDecimal(combinedProbability, combinedDecimal, tier.KellyMultiplier, oddsmath.ParlayKellyCap)

	p := models.Parlay{
		ID:                   uuid.New(),
		Legs:                 append([]models.Leg(nil), legs...),
		CombinedDecimalOdds:  combinedDecimal,
		CombinedAmericanOdds: int(math.Round(american)),
		RawProbability:       rawProbability,
		CombinedProbability:  combinedProbability,
		CorrelationScore:     correlation,
		RiskScore:            riskScore(len(legs), avgConfidence, correlation),
		ConfidenceScore:      avgConfidence,
		ExpectedValue:        expectedValue,
		KellyStakeFraction:   kelly,
		Warnings:             c.warnings(legs, combinedProbability, correlation, tier),
		CreatedAt:            time.Now().UTC(),
	}

	metrics.ParlaysBuiltTotal.Inc()
	c.logger.WithFields(logrus.Fields{
		"parlay_id":     p.ID,
		"legs":          len(p.Legs),
		"combined_odds": p.CombinedDecimalOdds,
		"probability":   p.CombinedProbability,
		"correlation":   p.CorrelationScore,
		"risk_score":    p.RiskScore,
		"warnings":      len(p.Warnings),
	}).Debug("Parlay combined")

	return p, nil
}

// riskScore blends leg count, average confidence and correlation into [0,1].
func riskScore(legCount int, avgConfidence, correlation float64) float64 {
	legFactor := float64(legCount-MinLegs) / float64(MaxLegs-MinLegs)
	confidenceFactor := 1.0 - oddsmath.Clamp(avgConfidence, 0, 1)
	blend := riskWeightLegs*legFactor + riskWeightConfidence*confidenceFactor + riskWeightCorrelation*correlation
	return oddsmath.Clamp(blend, 0, 1)
}

func (c *Combiner) warnings(legs []models.Leg, combinedProbability, correlation float64, tier models.RiskTier) []string {
	warnings := []string{}
	if correlation > tier.MaxCorrelation {
		warnings = append(warnings, fmt.Sprintf("correlation %.2f exceeds %s tier maximum %.2f", correlation, tier.Name, tier.MaxCorrelation))
	}
	for i := range legs {
		if legs[i].Assessment.Confidence < tier.MinConfidence {
			warnings = append(warnings, fmt.Sprintf("leg %d confidence %.2f below %s tier minimum %.2f", i+1, legs[i].Assessment.Confidence, tier.Name, tier.MinConfidence))
		}
	}
	if combinedProbability < tier.MinProbability {
		warnings = append(warnings, fmt.Sprintf("combined probability %.4f below %s tier minimum %.2f", combinedProbability, tier.Name, tier.MinProbability))
	}
	return warnings
}
