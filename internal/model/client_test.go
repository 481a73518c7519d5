package model

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testGame() models.Game {
	return models.Game{
		GameID:   "g1",
		Sport:    "nba",
		HomeTeam: "Boston Celtics",
		AwayTeam: "Miami Heat",
		GameTime: time.Date(2026, 1, 15, 0, 30, 0, 0, time.UTC),
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(&config.ModelConfig{
		URL:            baseURL,
		TimeoutSeconds: 2,
	}, testLogger())
	require.NoError(t, err)
	return client
}

func TestClientPredict(t *testing.T) {
	confidence := 0.8
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/predict", r.URL.Path)

		var req predictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "g1", req.GameID)
		assert.Equal(t, "Boston Celtics", req.HomeTeam)

		_ = json.NewEncoder(w).Encode(Prediction{
			GameID:             req.GameID,
			HomeWinProbability: 0.58,
			AwayWinProbability: 0.42,
			Confidence:         &confidence,
			ModelVersion:       "v12",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	prediction, err := client.Predict(context.Background(), testGame())
	require.NoError(t, err)
	assert.Equal(t, 0.58, prediction.HomeWinProbability)
	assert.Equal(t, 0.42, prediction.AwayWinProbability)
	require.NotNil(t, prediction.Confidence)
	assert.Equal(t, 0.8, *prediction.Confidence)
	assert.Equal(t, "v12", prediction.ModelVersion)
	assert.False(t, prediction.PredictedAt.IsZero())
}

func TestClientPredictRejectsOutOfRangeProbability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Prediction{
			GameID:             "g1",
			HomeWinProbability: 1.2,
			AwayWinProbability: 0.42,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Predict(context.Background(), testGame())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPrediction)
}

func TestClientPredictNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Predict(context.Background(), testGame())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPredictionForGame)
}

func TestClientWinProbabilitySides(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Prediction{
			GameID:             "g1",
			HomeWinProbability: 0.58,
			AwayWinProbability: 0.42,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	home, _, err := client.WinProbability(context.Background(), testGame(), models.SideHome)
	require.NoError(t, err)
	assert.Equal(t, 0.58, home)

	away, _, err := client.WinProbability(context.Background(), testGame(), models.SideAway)
	require.NoError(t, err)
	assert.Equal(t, 0.42, away)
}

func TestClientHealthCheckHTTPFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.NoError(t, client.HealthCheck(context.Background()))
}

func TestClientHealthCheckUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
