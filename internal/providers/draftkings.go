package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

const draftKingsProviderName = "draftkings"

// DraftKingsClient implements Provider for the DraftKings sportsbook API
type DraftKingsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// dkEventGroup represents an event group response from the DraftKings API
type dkEventGroup struct {
	Events []dkEvent `json:"events"`
}

type dkEvent struct {
	EventID   string    `json:"eventId"`
	StartDate string    `json:"startDate"`
	HomeTeam  string    `json:"teamName1"`
	AwayTeam  string    `json:"teamName2"`
	Offers    []dkOffer `json:"offers"`
}

type dkOffer struct {
	Label    string      `json:"label"`
	Outcomes []dkOutcome `json:"outcomes"`
}

type dkOutcome struct {
	Label        string `json:"label"`
	OddsAmerican string `json:"oddsAmerican"`
}

// NewDraftKingsClient creates a new DraftKings API client
func NewDraftKingsClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *DraftKingsClient {
	return &DraftKingsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves current odds for all upcoming games in a sport
func (c *DraftKingsClient) FetchOdds(ctx context.Context, sport string) ([]GameOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(draftKingsProviderName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/eventgroups/%s?format=json", c.baseURL, sport)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(draftKingsProviderName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(draftKingsProviderName, ErrCodeNetworkError, "failed to fetch event group", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewProviderError(draftKingsProviderName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(draftKingsProviderName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(draftKingsProviderName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var group dkEventGroup
	if err := json.NewDecoder(resp.Body).Decode(&group); err != nil {
		return nil, NewProviderError(draftKingsProviderName, ErrCodeInvalidData, "failed to parse response", err)
	}

	capturedAt := time.Now().UTC()
	games := make([]GameOdds, 0, len(group.Events))
	for _, event := range group.Events {
		odds := c.convertEvent(sport, &event, capturedAt)
		if odds != nil {
			games = append(games, *odds)
		}
	}

	return games, nil
}

// Name returns the provider name
func (c *DraftKingsClient) Name() string {
	return draftKingsProviderName
}

// IsEnabled returns whether this provider is enabled
func (c *DraftKingsClient) IsEnabled() bool {
	return c.enabled
}

// convertEvent converts a DraftKings event to GameOdds
func (c *DraftKingsClient) convertEvent(sport string, event *dkEvent, capturedAt time.Time) *GameOdds {
	gameTime, err := time.Parse(time.RFC3339, event.StartDate)
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

	for _, offer := range event.Offers {
		if !strings.EqualFold(offer.Label, "Moneyline") {
			continue
		}
		for _, outcome := range offer.Outcomes {
			american, err := parseAmericanOdds(outcome.OddsAmerican)
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"provider": draftKingsProviderName,
					"event_id": event.EventID,
					"odds":     outcome.OddsAmerican,
				}).Warn("Skipping unparseable odds")
				continue
			}

			var side models.Side
			switch outcome.Label {
			case event.HomeTeam:
				side = models.SideHome
			case event.AwayTeam:
				side = models.SideAway
			default:
				continue
			}

			odds.Quotes = append(odds.Quotes, models.Quote{
				ProviderID:   draftKingsProviderName,
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

// parseAmericanOdds parses odds strings like "+120" or "-140"
func parseAmericanOdds(s string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(s, "+"))
	if trimmed == "" {
		return 0, fmt.Errorf("empty odds string")
	}
	odds, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid american odds %q: %w", s, err)
	}
	return odds, nil
}
