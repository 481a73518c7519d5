package evaluator

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func canonicalOdds(homeOdds, awayOdds int) models.CanonicalOdds {
	now := time.Now()
	return models.CanonicalOdds{
		GameID:     "game-1",
		MarketType: models.MarketTypeMoneyline,
		BestQuotePerSide: map[models.Side]models.Quote{
			models.SideHome: {ProviderID: "draftkings", Side: models.SideHome, AmericanOdds: homeOdds, CapturedAt: now},
			models.SideAway: {ProviderID: "fanduel", Side: models.SideAway, AmericanOdds: awayOdds, CapturedAt: now},
		},
		ProviderCount: 2,
	}
}

func TestEvaluateAwayUnderdogScenario(t *testing.T) {
	e := New(1.0, testLogger())
	canonical := canonicalOdds(-140, 120)

	assessment, err := e.Evaluate(canonical, models.SideAway, 0.52, nil)
	require.NoError(t, err)

	assert.Equal(t, 120, assessment.AmericanOdds)
	assert.InDelta(t, 2.2, assessment.DecimalOdds, 1e-9)
	assert.InDelta(t, 0.4545, assessment.ImpliedProbability, 1e-4)
	assert.InDelta(t, 0.0655, assessment.Edge, 1e-4)
	assert.Greater(t, assessment.ExpectedValue, 0.0)
	assert.Greater(t, assessment.KellyFraction, 0.0)
	assert.LessOrEqual(t, assessment.KellyFraction, 0.25)
}

func TestEvaluateHomeFavoriteImpliedProbability(t *testing.T) {
	e := New(0.25, testLogger())
	canonical := canonicalOdds(-140, 120)

	assessment, err := e.Evaluate(canonical, models.SideHome, 0.60, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5833, assessment.ImpliedProbability, 1e-4)
}

func TestEvaluateConfidenceFallback(t *testing.T) {
	e := New(0.25, testLogger())
	canonical := canonicalOdds(-140, 120)

	// edge ~= 0.0655, fallback = max(0.35, 0.131) = 0.35
	assessment, err := e.Evaluate(canonical, models.SideAway, 0.52, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, assessment.Confidence, 1e-9)

	// A huge edge saturates at the ceiling.
	assessment, err = e.Evaluate(canonical, models.SideAway, 0.99, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, assessment.Confidence, 1e-9)

	// Supplied confidence wins over the fallback.
	supplied := 0.8
	assessment, err = e.Evaluate(canonical, models.SideAway, 0.52, &supplied)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, assessment.Confidence, 1e-9)
}

func TestEvaluateRejectsBadProbability(t *testing.T) {
	e := New(0.25, testLogger())
	canonical := canonicalOdds(-140, 120)

	for _, p := range []float64{0, 1, -0.2, 1.7} {
		_, err := e.Evaluate(canonical, models.SideAway, p, nil)
		assert.ErrorIs(t, err, models.ErrInvalidProbability, "probability %v", p)
	}
}

func TestEvaluateRejectsMissingSide(t *testing.T) {
	e := New(0.25, testLogger())
	canonical := models.CanonicalOdds{
		GameID:     "game-2",
		MarketType: models.MarketTypeMoneyline,
		BestQuotePerSide: map[models.Side]models.Quote{
			models.SideHome: {ProviderID: "draftkings", Side: models.SideHome, AmericanOdds: -140, CapturedAt: time.Now()},
		},
	}

	_, err := e.Evaluate(canonical, models.SideAway, 0.5, nil)
	assert.ErrorIs(t, err, models.ErrNoQuoteForSide)
}

func TestRateExpectedValue(t *testing.T) {
	tests := []struct {
		name string
		ev   float64
		want models.ValueRating
	}{
		{"well above excellent", 22.0, models.RatingExcellent},
		{"excellent boundary", 15.0, models.RatingExcellent},
		{"good boundary", 8.0, models.RatingGood},
		{"just under excellent", 14.99, models.RatingGood},
		{"moderate boundary", 3.0, models.RatingModerate},
		{"just under good", 7.9, models.RatingModerate},
		{"barely positive", 1.0, models.RatingPoor},
		{"negative", -5.0, models.RatingPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RateExpectedValue(tt.ev))
		})
	}
}
