package parlay

import (
	"time"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/oddsmath"
)

// DefaultTimeWindow is how close two start times must be for legs to be
// flagged time-clustered.
const DefaultTimeWindow = 30 * time.Minute

// defaultPairScore is the correlation contribution of one flagged pair with
// no explicit hint.
const defaultPairScore = 0.25

// PairHint supplies an explicit correlation score for a pair of legs,
// identified by their indexes in the leg slice.
type PairHint struct {
	LegA  int
	LegB  int
	Score float64
}

// correlationScore flags every pair of legs sharing a game or starting
// within the time window and sums their contributions, capped at 1.0. A
// hinted pair contributes its hint score instead of the default, so the
// score grows monotonically with the number of correlated pairs.
func correlationScore(legs []models.Leg, window time.Duration, hints []PairHint) float64 {
	hinted := make(map[[2]int]float64, len(hints))
	for _, h := range hints {
		a, b := h.LegA, h.LegB
		if a > b {
			a, b = b, a
		}
		hinted[[2]int{a, b}] = oddsmath.Clamp(h.Score, 0, 1)
	}

	score := 0.0
	for i := 0; i < len(legs); i++ {
		for j := i + 1; j < len(legs); j++ {
			pair := [2]int{i, j}
			if hint, ok := hinted[pair]; ok {
				score += hint
				continue
			}
			if correlatedPair(legs[i], legs[j], window) {
				score += defaultPairScore
			}
		}
	}
	return oddsmath.Clamp(score, 0, 1)
}

func correlatedPair(a, b models.Leg, window time.Duration) bool {
	if a.Assessment.GameID == b.Assessment.GameID {
		return true
	}
	if a.GameTime.IsZero() || b.GameTime.IsZero() {
		return false
	}
	gap := a.GameTime.Sub(b.GameTime)
	if gap < 0 {
		gap = -gap
	}
	return gap <= window
}
