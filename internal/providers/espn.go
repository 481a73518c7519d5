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

const espnProviderName = "espn"

// ESPNClient implements Provider for the ESPN scoreboard API
type ESPNClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     *logrus.Logger
}

// espnScoreboard represents the scoreboard response from the ESPN API
type espnScoreboard struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnCompetition struct {
	Competitors []espnCompetitor `json:"competitors"`
	Odds        []espnOdds       `json:"odds"`
}

type espnCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Team     espnTeam `json:"team"`
}

type espnTeam struct {
	DisplayName string `json:"displayName"`
}

type espnOdds struct {
	Provider     espnOddsProvider `json:"provider"`
	HomeTeamOdds espnTeamOdds     `json:"homeTeamOdds"`
	AwayTeamOdds espnTeamOdds     `json:"awayTeamOdds"`
}

type espnOddsProvider struct {
	Name string `json:"name"`
}

type espnTeamOdds struct {
	MoneyLine int `json:"moneyLine"`
}

// NewESPNClient creates a new ESPN scoreboard client. ESPN's public API
// does not require an API key.
func NewESPNClient(httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger *logrus.Logger) *ESPNClient {
	return &ESPNClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves current odds for all upcoming games in a sport
func (c *ESPNClient) FetchOdds(ctx context.Context, sport string) ([]GameOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(espnProviderName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/%s/scoreboard", c.baseURL, sport)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(espnProviderName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(espnProviderName, ErrCodeNetworkError, "failed to fetch scoreboard", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(espnProviderName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(espnProviderName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var scoreboard espnScoreboard
	if err := json.NewDecoder(resp.Body).Decode(&scoreboard); err != nil {
		return nil, NewProviderError(espnProviderName, ErrCodeInvalidData, "failed to parse response", err)
	}

	capturedAt := time.Now().UTC()
	games := make([]GameOdds, 0, len(scoreboard.Events))
	for _, event := range scoreboard.Events {
		game, err := c.convertEvent(sport, &event, capturedAt)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"provider": espnProviderName,
				"event_id": event.ID,
				"error":    err.Error(),
			}).Warn("Skipping unparseable event")
			continue
		}
		games = append(games, *game)
	}

	return games, nil
}

// Name returns the provider name
func (c *ESPNClient) Name() string {
	return espnProviderName
}

// IsEnabled returns whether this provider is enabled
func (c *ESPNClient) IsEnabled() bool {
	return c.enabled
}

// convertEvent converts an ESPN event to GameOdds
func (c *ESPNClient) convertEvent(sport string, event *espnEvent, capturedAt time.Time) (*GameOdds, error) {
	if len(event.Competitions) == 0 {
		return nil, fmt.Errorf("event %s has no competitions", event.ID)
	}
	comp := event.Competitions[0]

	var homeTeam, awayTeam string
	for _, competitor := range comp.Competitors {
		switch competitor.HomeAway {
		case "home":
			homeTeam = competitor.Team.DisplayName
		case "away":
			awayTeam = competitor.Team.DisplayName
		}
	}
	if homeTeam == "" || awayTeam == "" {
		return nil, fmt.Errorf("event %s is missing competitors", event.ID)
	}

	gameTime, err := time.Parse(time.RFC3339, event.Date)
	if err != nil {
		gameTime = capturedAt
	}

	odds := GameOdds{
		Game: models.Game{
			GameID:   event.ID,
			Sport:    sport,
			HomeTeam: homeTeam,
			AwayTeam: awayTeam,
			GameTime: gameTime,
		},
		Market: models.MarketTypeMoneyline,
	}

	for _, line := range comp.Odds {
		if line.HomeTeamOdds.MoneyLine != 0 {
			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   espnProviderName + ":" + line.Provider.Name,
				Side:         models.SideHome,
				AmericanOdds: line.HomeTeamOdds.MoneyLine,
				CapturedAt:   capturedAt,
			})
		}
		if line.AwayTeamOdds.MoneyLine != 0 {
			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   espnProviderName + ":" + line.Provider.Name,
				Side:         models.SideAway,
				AmericanOdds: line.AwayTeamOdds.MoneyLine,
				CapturedAt:   capturedAt,
			})
		}
	}

	return &odds, nil
}
