package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

const sportsDataIOProviderName = "sportsdataio"

// SportsDataIOClient implements Provider for the SportsDataIO odds API.
// SportsDataIO aggregates per-sportsbook pregame lines for each game.
type SportsDataIOClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// sdioGameOdds represents one game's odds from the SportsDataIO API
type sdioGameOdds struct {
	GameID       int           `json:"GameId"`
	DateTime     string        `json:"DateTime"`
	HomeTeamName string        `json:"HomeTeamName"`
	AwayTeamName string        `json:"AwayTeamName"`
	PregameOdds  []sdioPregame `json:"PregameOdds"`
}

type sdioPregame struct {
	Sportsbook    string `json:"Sportsbook"`
	HomeMoneyLine *int   `json:"HomeMoneyLine"`
	AwayMoneyLine *int   `json:"AwayMoneyLine"`
	Updated       string `json:"Updated"`
}

// NewSportsDataIOClient creates a new SportsDataIO API client
func NewSportsDataIOClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *SportsDataIOClient {
	return &SportsDataIOClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves current odds for all upcoming games in a sport
func (c *SportsDataIOClient) FetchOdds(ctx context.Context, sport string) ([]GameOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/%s/odds/json/GameOddsByDate/%s", c.baseURL, sport, time.Now().UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeAuthenticationFailed, "invalid subscription key", ErrAuthenticationFailed)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var sdioGames []sdioGameOdds
	if err := json.NewDecoder(resp.Body).Decode(&sdioGames); err != nil {
		return nil, NewProviderError(sportsDataIOProviderName, ErrCodeInvalidData, "failed to parse response", err)
	}

	capturedAt := time.Now().UTC()
	games := make([]GameOdds, 0, len(sdioGames))
	for _, sdioGame := range sdioGames {
		odds := c.convertGame(sport, &sdioGame, capturedAt)
		if odds != nil {
			games = append(games, *odds)
		}
	}

	return games, nil
}

// Name returns the provider name
func (c *SportsDataIOClient) Name() string {
	return sportsDataIOProviderName
}

// IsEnabled returns whether this provider is enabled
func (c *SportsDataIOClient) IsEnabled() bool {
	return c.enabled
}

// convertGame converts a SportsDataIO game to GameOdds. Each sportsbook's
// pregame line becomes its own quote so normalization can pick the best.
func (c *SportsDataIOClient) convertGame(sport string, sdioGame *sdioGameOdds, capturedAt time.Time) *GameOdds {
	gameTime, err := time.Parse("2006-01-02T15:04:05", sdioGame.DateTime)
	if err != nil {
		gameTime = capturedAt
	}

	odds := GameOdds{
		Game: models.Game{
			GameID:   strconv.Itoa(sdioGame.GameID),
			Sport:    sport,
			HomeTeam: sdioGame.HomeTeamName,
			AwayTeam: sdioGame.AwayTeamName,
			GameTime: gameTime,
		},
		Market: models.MarketTypeMoneyline,
	}

	for _, line := range sdioGame.PregameOdds {
		lineTime := capturedAt
		if parsed, err := time.Parse("2006-01-02T15:04:05", line.Updated); err == nil {
			lineTime = parsed
		}

		providerID := sportsDataIOProviderName + ":" + line.Sportsbook
		if line.HomeMoneyLine != nil && *line.HomeMoneyLine != 0 {
			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   providerID,
				Side:         models.SideHome,
				AmericanOdds: *line.HomeMoneyLine,
				CapturedAt:   lineTime,
			})
		}
		if line.AwayMoneyLine != nil && *line.AwayMoneyLine != 0 {
			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   providerID,
				Side:         models.SideAway,
				AmericanOdds: *line.AwayMoneyLine,
				CapturedAt:   lineTime,
			})
		}
	}

	if len(odds.Quotes) == 0 {
		return nil
	}
	return &odds
}
