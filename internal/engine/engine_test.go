package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// stubProbabilitySource returns fixed probabilities keyed by game/side.
type stubProbabilitySource struct {
	probs map[string]map[models.Side]float64
}

func (s *stubProbabilitySource) WinProbability(_ context.Context, game models.Game, side models.Side) (float64, *float64, error) {
	bySide, ok := s.probs[game.GameID]
	if !ok {
		return 0, nil, models.ErrNotFound
	}
	p, ok := bySide[side]
	if !ok {
		return 0, nil, models.ErrNotFound
	}
	return p, nil, nil
}

// MockRecorder mocks the persistence boundary
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) SaveAssessments(ctx context.Context, assessments []models.ValueAssessment) error {
	args := m.Called(ctx, assessments)
	return args.Error(0)
}

func (m *MockRecorder) SaveParlays(ctx context.Context, parlays []models.Parlay) error {
	args := m.Called(ctx, parlays)
	return args.Error(0)
}

func game(id string, home, away int, start time.Time) models.Game {
	return models.Game{
		GameID:        id,
		Sport:         "nba",
		HomeTeam:      "Home " + id,
		AwayTeam:      "Away " + id,
		HomeMoneyline: home,
		AwayMoneyline: away,
		GameTime:      start,
	}
}

func TestEvaluateMoneylinesFindsValueSide(t *testing.T) {
	probs := &stubProbabilitySource{probs: map[string]map[models.Side]float64{
		"g1": {models.SideHome: 0.55, models.SideAway: 0.52},
	}}
	e := New(probs, nil, nil, testLogger())

	resp, err := e.EvaluateMoneylines(context.Background(), MoneylineRequest{
		Sport:   "nba",
		MinEdge: 0.05,
		Games:   []models.Game{game("g1", -140, 120, time.Now().Add(time.Hour))},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.GamesEvaluated)
	assert.Equal(t, 0, resp.GamesSkipped)
	// Away edge 0.52-0.4545=0.0655 clears 0.05; home edge 0.55-0.5833 is negative.
	require.Len(t, resp.Bets, 1)
	bet := resp.Bets[0]
	assert.Equal(t, "Away g1", bet.Team)
	assert.Equal(t, 120, bet.AmericanOdds)
	assert.InDelta(t, 0.0655, bet.Edge, 1e-4)
	assert.InDelta(t, 0.52, bet.TrueProbability, 1e-9)
}

func TestEvaluateMoneylinesSkipsBadGames(t *testing.T) {
	probs := &stubProbabilitySource{probs: map[string]map[models.Side]float64{
		"good": {models.SideHome: 0.60, models.SideAway: 0.40},
	}}
	e := New(probs, nil, nil, testLogger())

	resp, err := e.EvaluateMoneylines(context.Background(), MoneylineRequest{
		Sport:   "nba",
		MinEdge: 0.0,
		Games: []models.Game{
			game("good", -110, -110, time.Now()),
			game("no-quotes", 0, 0, time.Now()),
			game("no-model", -120, 110, time.Now()),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.GamesEvaluated)
	assert.Equal(t, 2, resp.GamesSkipped)
}

func TestEvaluateMoneylinesRecordsAssessments(t *testing.T) {
	probs := &stubProbabilitySource{probs: map[string]map[models.Side]float64{
		"g1": {models.SideHome: 0.55, models.SideAway: 0.45},
	}}
	recorder := new(MockRecorder)
	recorder.On("SaveAssessments", mock.Anything, mock.AnythingOfType("[]models.ValueAssessment")).Return(nil)

	e := New(probs, nil, recorder, testLogger())
	_, err := e.EvaluateMoneylines(context.Background(), MoneylineRequest{
		Sport: "nba",
		Games: []models.Game{game("g1", -110, -110, time.Now())},
	})
	require.NoError(t, err)
	recorder.AssertCalled(t, "SaveAssessments", mock.Anything, mock.Anything)
}

func parlaySlate(start time.Time) []models.Game {
	// Spread the games days apart so no time-window correlation kicks in.
	return []models.Game{
		game("g1", -140, 130, start),
		game("g2", -120, 115, start.Add(24*time.Hour)),
		game("g3", -110, 105, start.Add(48*time.Hour)),
	}
}

func parlayProbs() *stubProbabilitySource {
	return &stubProbabilitySource{probs: map[string]map[models.Side]float64{
		"g1": {models.SideHome: 0.68, models.SideAway: 0.32},
		"g2": {models.SideHome: 0.64, models.SideAway: 0.36},
		"g3": {models.SideHome: 0.62, models.SideAway: 0.38},
	}}
}

func TestOptimizeParlaysBuildsRankedParlays(t *testing.T) {
	e := New(parlayProbs(), nil, nil, testLogger())

	resp, err := e.OptimizeParlays(context.Background(), ParlayRequest{
		RiskLevel:  "yolo",
		MaxParlays: 3,
		Games:      parlaySlate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Parlays)
	assert.LessOrEqual(t, len(resp.Parlays), 3)

	// Ranked by expected value, best first.
	for i := 1; i < len(resp.Parlays); i++ {
		assert.GreaterOrEqual(t, resp.Parlays[i-1].ExpectedValue, resp.Parlays[i].ExpectedValue)
	}

	for _, p := range resp.Parlays {
		assert.GreaterOrEqual(t, p.TotalProbability, 0.0)
		assert.GreaterOrEqual(t, len(p.Legs), 2)
		assert.LessOrEqual(t, p.KellyStake, 0.10)
		assert.Equal(t, []string{"nba"}, p.SportsIncluded)
	}
}

func TestOptimizeParlaysUnknownTier(t *testing.T) {
	e := New(parlayProbs(), nil, nil, testLogger())

	_, err := e.OptimizeParlays(context.Background(), ParlayRequest{
		RiskLevel: "degenerate",
		Games:     parlaySlate(time.Now()),
	})
	assert.ErrorIs(t, err, models.ErrUnknownRiskTier)
}

func TestOptimizeParlaysSportFilter(t *testing.T) {
	e := New(parlayProbs(), nil, nil, testLogger())

	resp, err := e.OptimizeParlays(context.Background(), ParlayRequest{
		RiskLevel: "yolo",
		Sports:    []string{"nhl"},
		Games:     parlaySlate(time.Now()),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Parlays, "no games match the sport filter")
}

func TestOptimizeParlaysEmptyWhenTooFewLegs(t *testing.T) {
	// Model covers only one game; a single leg cannot form a parlay.
	probs := &stubProbabilitySource{probs: map[string]map[models.Side]float64{
		"g1": {models.SideHome: 0.68},
	}}
	e := New(probs, nil, nil, testLogger())

	resp, err := e.OptimizeParlays(context.Background(), ParlayRequest{
		RiskLevel: "yolo",
		Games:     parlaySlate(time.Now()),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Parlays)
	assert.Equal(t, 2, resp.GamesSkipped)
}

func TestOptimizeParlaysPolicyCorrelationWindow(t *testing.T) {
	// Two games 40 minutes apart: outside the default 30-minute cluster
	// window, inside a configured 2-hour one.
	start := time.Now().Add(time.Hour)
	games := []models.Game{
		game("g1", -140, 130, start),
		game("g2", -120, 115, start.Add(40*time.Minute)),
	}
	req := ParlayRequest{RiskLevel: "yolo", Games: games}

	defaultEngine := New(parlayProbs(), nil, nil, testLogger())
	resp, err := defaultEngine.OptimizeParlays(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Parlays)
	assert.Equal(t, 0.0, resp.Parlays[0].CorrelationScore)
	uncorrelated := resp.Parlays[0].TotalProbability

	wideEngine := NewWithPolicy(parlayProbs(), nil, nil, Policy{CorrelationWindow: 2 * time.Hour}, testLogger())
	resp, err = wideEngine.OptimizeParlays(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Parlays)
	assert.InDelta(t, 0.25, resp.Parlays[0].CorrelationScore, 1e-9)
	assert.Less(t, resp.Parlays[0].TotalProbability, uncorrelated)
}

func TestTightenTierOnlyTightens(t *testing.T) {
	base := models.RiskTier{MinConfidence: 0.5, MaxCorrelation: 0.5}

	tightened := tightenTier(base, ParlayRequest{MinConfidence: 0.7, MaxCorrelation: 0.3})
	assert.Equal(t, 0.7, tightened.MinConfidence)
	assert.Equal(t, 0.3, tightened.MaxCorrelation)

	loosened := tightenTier(base, ParlayRequest{MinConfidence: 0.2, MaxCorrelation: 0.9})
	assert.Equal(t, base.MinConfidence, loosened.MinConfidence)
	assert.Equal(t, base.MaxCorrelation, loosened.MaxCorrelation)
}

func TestCombinations(t *testing.T) {
	assert.Len(t, combinations(4, 2), 6)
	assert.Len(t, combinations(5, 3), 10)
	assert.Nil(t, combinations(2, 3))
	assert.Nil(t, combinations(3, 0))
}
