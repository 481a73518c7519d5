package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

const betMGMProviderName = "betmgm"

// BetMGMClient implements Provider for the BetMGM fixtures API
type BetMGMClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// mgmFixtureList represents the fixtures response from the BetMGM API
type mgmFixtureList struct {
	Fixtures []mgmFixture `json:"fixtures"`
}

type mgmFixture struct {
	ID        string    `json:"id"`
	StartDate string    `json:"startDate"`
	HomeName  string    `json:"homeName"`
	AwayName  string    `json:"awayName"`
	Games     []mgmGame `json:"games"`
}

type mgmGame struct {
	Name    string      `json:"name"`
	Results []mgmResult `json:"results"`
}

type mgmResult struct {
	Name         string `json:"name"`
	AmericanOdds int    `json:"americanOdds"`
}

// NewBetMGMClient creates a new BetMGM API client
func NewBetMGMClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *BetMGMClient {
	return &BetMGMClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves current odds for all upcoming games in a sport
func (c *BetMGMClient) FetchOdds(ctx context.Context, sport string) ([]GameOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(betMGMProviderName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/fixtures?sport=%s", c.baseURL, sport)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(betMGMProviderName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(betMGMProviderName, ErrCodeNetworkError, "failed to fetch fixtures", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewProviderError(betMGMProviderName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(betMGMProviderName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(betMGMProviderName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var list mgmFixtureList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, NewProviderError(betMGMProviderName, ErrCodeInvalidData, "failed to parse response", err)
	}

	capturedAt := time.Now().UTC()
	games := make([]GameOdds, 0, len(list.Fixtures))
	for _, fixture := range list.Fixtures {
		odds := c.convertFixture(sport, &fixture, capturedAt)
		if odds != nil {
			games = append(games, *odds)
		}
	}

	return games, nil
}

// Name returns the provider name
func (c *BetMGMClient) Name() string {
	return betMGMProviderName
}

// IsEnabled returns whether this provider is enabled
func (c *BetMGMClient) IsEnabled() bool {
	return c.enabled
}

// convertFixture converts a BetMGM fixture to GameOdds
func (c *BetMGMClient) convertFixture(sport string, fixture *mgmFixture, capturedAt time.Time) *GameOdds {
	gameTime, err := time.Parse(time.RFC3339, fixture.StartDate)
	if err != nil {
		gameTime = capturedAt
	}

	odds := GameOdds{
		Game: models.Game{
			GameID:   fixture.ID,
			Sport:    sport,
			HomeTeam: fixture.HomeName,
			AwayTeam: fixture.AwayName,
			GameTime: gameTime,
		},
		Market: models.MarketTypeMoneyline,
	}

	for _, game := range fixture.Games {
		if game.Name != "Money Line" {
			continue
		}
		for _, result := range game.Results {
			if result.AmericanOdds == 0 {
				continue
			}

			var side models.Side
			switch result.Name {
			case fixture.HomeName:
				side = models.SideHome
			case fixture.AwayName:
				side = models.SideAway
			default:
				continue
			}

			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   betMGMProviderName,
				Side:         side,
				AmericanOdds: result.AmericanOdds,
				CapturedAt:   capturedAt,
			})
		}
	}

	if len(odds.Quotes) == 0 {
		return nil
	}
	return &odds
}
