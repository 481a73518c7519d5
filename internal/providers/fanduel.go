package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/oddsmath"
)

const fanDuelProviderName = "fanduel"

// FanDuelClient implements Provider for the FanDuel sportsbook API.
// FanDuel quotes prices as decimal odds strings.
type FanDuelClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// fdEventList represents the event list response from the FanDuel API
type fdEventList struct {
	Events []fdEvent `json:"events"`
}

type fdEvent struct {
	EventID  string     `json:"eventId"`
	OpenDate string     `json:"openDate"`
	HomeTeam string     `json:"homeTeam"`
	AwayTeam string     `json:"awayTeam"`
	Markets  []fdMarket `json:"markets"`
}

type fdMarket struct {
	MarketType string     `json:"marketType"`
	Runners    []fdRunner `json:"runners"`
}

type fdRunner struct {
	RunnerName  string `json:"runnerName"`
	DecimalOdds string `json:"decimalOdds"`
}

// NewFanDuelClient creates a new FanDuel API client
func NewFanDuelClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *FanDuelClient {
	return &FanDuelClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves current odds for all upcoming games in a sport
func (c *FanDuelClient) FetchOdds(ctx context.Context, sport string) ([]GameOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(fanDuelProviderName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/events?sport=%s", c.baseURL, sport)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(fanDuelProviderName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(fanDuelProviderName, ErrCodeNetworkError, "failed to fetch events", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewProviderError(fanDuelProviderName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(fanDuelProviderName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(fanDuelProviderName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var list fdEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, NewProviderError(fanDuelProviderName, ErrCodeInvalidData, "failed to parse response", err)
	}

	capturedAt := time.Now().UTC()
	games := make([]GameOdds, 0, len(list.Events))
	for _, event := range list.Events {
		odds := c.convertEvent(sport, &event, capturedAt)
		if odds != nil {
			games = append(games, *odds)
		}
	}

	return games, nil
}

// Name returns the provider name
func (c *FanDuelClient) Name() string {
	return fanDuelProviderName
}

// IsEnabled returns whether this provider is enabled
func (c *FanDuelClient) IsEnabled() bool {
	return c.enabled
}

// convertEvent converts a FanDuel event to GameOdds
func (c *FanDuelClient) convertEvent(sport string, event *fdEvent, capturedAt time.Time) *GameOdds {
	gameTime, err := time.Parse(time.RFC3339, event.OpenDate)
	if err != nil {
		gameTime = capturedAt
	}

	odds := GameOdds{
		Game: models.Game{
			GameID:   event.EventID,
			Sport:    sport,
			HomeTeam: event.HomeTeam,
			AwayTeam: event.AwayTeam,
			GameTime: gameTime,
		},
		Market: models.MarketTypeMoneyline,
	}

	for _, market := range event.Markets {
		if market.MarketType != "MONEY_LINE" {
			continue
		}
		for _, runner := range market.Runners {
			american, err := decimalStringToAmerican(runner.DecimalOdds)
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"provider": fanDuelProviderName,
					"event_id": event.EventID,
					"odds":     runner.DecimalOdds,
				}).Warn("Skipping unparseable odds")
				continue
			}

			var side models.Side
			switch runner.RunnerName {
			case event.HomeTeam:
				side = models.SideHome
			case event.AwayTeam:
				side = models.SideAway
			default:
				continue
			}

			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   fanDuelProviderName,
				Side:         side,
				AmericanOdds: american,
				CapturedAt:   capturedAt,
			})
		}
	}

	if len(odds.Quotes) == 0 {
		return nil
	}
	return &odds
}

// decimalStringToAmerican parses a decimal odds string and converts it
// to the nearest American odds integer.
func decimalStringToAmerican(s string) (int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal odds %q: %w", s, err)
	}

	american, err := oddsmath.DecimalToAmerican(d.InexactFloat64())
	if err != nil {
		return 0, err
	}
	return int(math.Round(american)), nil
}
