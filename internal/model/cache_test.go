package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// stubPredictor counts calls and returns a canned prediction
type stubPredictor struct {
	calls      int
	prediction *Prediction
	err        error
}

func (s *stubPredictor) Predict(ctx context.Context, game models.Game) (*Prediction, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.prediction, nil
}

func TestPredictionCacheGetSet(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 100)

	assert.Nil(t, pc.Get("g1"))

	pc.Set("g1", &Prediction{GameID: "g1", HomeWinProbability: 0.58, AwayWinProbability: 0.42})

	cached := pc.Get("g1")
	require.NotNil(t, cached)
	assert.Equal(t, 0.58, cached.HomeWinProbability)

	hits, misses, ratio := pc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

func TestPredictionCacheConcurrentReaders(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 100)
	pc.Set("g1", &Prediction{GameID: "g1", HomeWinProbability: 0.58, AwayWinProbability: 0.42})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				pc.Get("g1")
				pc.Get("missing")
			}
		}()
	}
	wg.Wait()

	hits, misses, _ := pc.Stats()
	assert.Equal(t, uint64(400), hits)
	assert.Equal(t, uint64(400), misses)
}

func TestPredictionCacheClear(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 100)

	pc.Set("g1", &Prediction{GameID: "g1"})
	pc.Clear()

	assert.Nil(t, pc.Get("g1"))
	assert.Equal(t, 0, pc.ItemCount())
}

func TestCachedClientFetchesOnceThenServesFromCache(t *testing.T) {
	stub := &stubPredictor{
		prediction: &Prediction{GameID: "g1", HomeWinProbability: 0.58, AwayWinProbability: 0.42},
	}
	cc := NewCachedClient(stub, NewPredictionCache(time.Minute, 100))

	game := models.Game{GameID: "g1", Sport: "nba", HomeTeam: "Home", AwayTeam: "Away"}

	for i := 0; i < 3; i++ {
		prediction, err := cc.Predict(context.Background(), game)
		require.NoError(t, err)
		assert.Equal(t, 0.58, prediction.HomeWinProbability)
	}

	assert.Equal(t, 1, stub.calls)
}

func TestCachedClientDoesNotCacheErrors(t *testing.T) {
	stub := &stubPredictor{err: errors.New("model down")}
	cc := NewCachedClient(stub, NewPredictionCache(time.Minute, 100))

	game := models.Game{GameID: "g1", Sport: "nba", HomeTeam: "Home", AwayTeam: "Away"}

	_, err := cc.Predict(context.Background(), game)
	require.Error(t, err)
	_, err = cc.Predict(context.Background(), game)
	require.Error(t, err)

	assert.Equal(t, 2, stub.calls)
}

func TestCachedClientWinProbability(t *testing.T) {
	confidence := 0.7
	stub := &stubPredictor{
		prediction: &Prediction{GameID: "g1", HomeWinProbability: 0.58, AwayWinProbability: 0.42, Confidence: &confidence},
	}
	cc := NewCachedClient(stub, NewPredictionCache(time.Minute, 100))

	game := models.Game{GameID: "g1", Sport: "nba", HomeTeam: "Home", AwayTeam: "Away"}

	prob, conf, err := cc.WinProbability(context.Background(), game, models.SideAway)
	require.NoError(t, err)
	assert.Equal(t, 0.42, prob)
	require.NotNil(t, conf)
	assert.Equal(t, 0.7, *conf)
}
