package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const espnScoreboardFixture = `{
	"events": [
		{
			"id": "401584669",
			"date": "2026-01-15T00:30:00Z",
			"competitions": [
				{
					"competitors": [
						{"homeAway": "home", "team": {"displayName": "Boston Celtics"}},
						{"homeAway": "away", "team": {"displayName": "Miami Heat"}}
					],
					"odds": [
						{
							"provider": {"name": "consensus"},
							"homeTeamOdds": {"moneyLine": -140},
							"awayTeamOdds": {"moneyLine": 120}
						}
					]
				}
			]
		},
		{
			"id": "401584670",
			"date": "2026-01-15T02:00:00Z",
			"competitions": [
				{
					"competitors": [
						{"homeAway": "home", "team": {"displayName": "Denver Nuggets"}},
						{"homeAway": "away", "team": {"displayName": "Utah Jazz"}}
					],
					"odds": []
				}
			]
		}
	]
}`

func TestESPNFetchOdds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/basketball/nba/scoreboard", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(espnScoreboardFixture))
	}))
	defer server.Close()

	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), testLogger())
	client := NewESPNClient(httpClient, server.URL, true, testLogger())

	games, err := client.FetchOdds(context.Background(), "basketball/nba")
	require.NoError(t, err)
	require.Len(t, games, 2)

	first := games[0]
	assert.Equal(t, "401584669", first.Game.GameID)
	assert.Equal(t, "Boston Celtics", first.Game.HomeTeam)
	assert.Equal(t, "Miami Heat", first.Game.AwayTeam)
	assert.Equal(t, models.MarketTypeMoneyline, first.Market)
	require.Len(t, first.Quotes, 2)
	assert.Equal(t, -140, first.Quotes[0].AmericanOdds)
	assert.Equal(t, models.SideHome, first.Quotes[0].Side)
	assert.Equal(t, 120, first.Quotes[1].AmericanOdds)
	assert.Equal(t, models.SideAway, first.Quotes[1].Side)

	// Second event carries no odds lines but is still a tracked game
	assert.Empty(t, games[1].Quotes)
}

func TestESPNFetchOddsDisabled(t *testing.T) {
	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), testLogger())
	client := NewESPNClient(httpClient, "http://localhost", false, testLogger())

	_, err := client.FetchOdds(context.Background(), "basketball/nba")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestESPNFetchOddsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), testLogger())
	client := NewESPNClient(httpClient, server.URL, true, testLogger())

	_, err := client.FetchOdds(context.Background(), "basketball/nba")
	require.Error(t, err)

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, espnProviderName, provErr.Provider)
}
