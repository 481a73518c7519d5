// Package oddsmath provides pure conversion and staking math for American
// and decimal odds. All functions are stateless and safe for concurrent use.
package oddsmath

import (
	"math"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// DefaultKellyCap is the maximum fraction of bankroll a single bet may
// receive regardless of what the raw Kelly formula produces. Unconstrained
// Kelly can exceed the bankroll on mispriced inputs.
const DefaultKellyCap = 0.25

// ParlayKellyCap is the tighter cap applied to parlays, since variance
// compounds across legs.
const ParlayKellyCap = 0.10

// AmericanToDecimal converts American odds to decimal odds.
// American +150 -> 2.50, American -150 -> 1.6667.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, models.ErrInvalidOdds
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}
	return 100.0/float64(-american) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds. Decimal 2.0 is
// the even-money boundary; the positive branch owns it, so 2.0 -> +100.
func DecimalToAmerican(decimal float64) (float64, error) {
	if decimal <= 1.0 {
		return 0, models.ErrInvalidOdds
	}
	if decimal >= 2.0 {
		return (decimal - 1.0) * 100.0, nil
	}
	return -100.0 / (decimal - 1.0), nil
}

// ImpliedProbability returns the probability consistent with the given
// American odds, ignoring the bookmaker margin. Output is strictly in (0,1)
// for any nonzero input.
func ImpliedProbability(american int) (float64, error) {
	if american == 0 {
		return 0, models.ErrInvalidOdds
	}
	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}
	abs := float64(-american)
	return abs / (abs + 100.0), nil
}

// Edge is the difference between an externally estimated true probability
// and the market's implied probability.
func Edge(trueProbability, impliedProbability float64) float64 {
	return trueProbability - impliedProbability
}

// ExpectedValue returns the expected profit on the given stake at the given
// American odds, assuming trueProbability is the real win probability.
func ExpectedValue(trueProbability float64, american int, stake float64) (float64, error) {
	if trueProbability <= 0 || trueProbability >= 1 {
		return 0, models.ErrInvalidProbability
	}
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return trueProbability*stake*(decimal-1.0) - (1.0-trueProbability)*stake, nil
}

// KellyFraction returns the fraction of bankroll to stake per the Kelly
// criterion, scaled by fractionalMultiplier and clamped to [0, DefaultKellyCap].
func KellyFraction(trueProbability float64, american int, fractionalMultiplier float64) (float64, error) {
	if trueProbability <= 0 || trueProbability >= 1 {
		return 0, models.ErrInvalidProbability
	}
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return KellyFromDecimal(trueProbability, decimal, fractionalMultiplier, DefaultKellyCap), nil
}

// KellyFromDecimal computes the capped fractional Kelly stake from decimal
// odds. Decimal odds collapsing to 1.0 make the Kelly denominator zero; that
// is legitimate even-money degeneracy and reports as a zero stake rather
// than an error.
func KellyFromDecimal(trueProbability, decimal, fractionalMultiplier, cap float64) float64 {
	b := decimal - 1.0
	if b <= 0 {
		return 0
	}
	p := trueProbability
	q := 1.0 - p
	raw := (b*p - q) / b
	scaled := raw * fractionalMultiplier
	return Clamp(scaled, 0, cap)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
