package models

import (
	"time"

	"github.com/google/uuid"
)

// Leg is one scored pick inside a parlay. Legs are copied by value when a
// parlay is built; a leg is owned by exactly one parlay.
type Leg struct {
	Assessment ValueAssessment `json:"assessment"`
	Sport      string          `json:"sport"`
	HomeTeam   string          `json:"home_team"`
	AwayTeam   string          `json:"away_team"`
	Team       string          `json:"team"`
	BetType    string          `json:"bet_type"`
	Line       float64         `json:"line"`
	GameTime   time.Time       `json:"game_time"`
}

// Parlay is an immutable multi-leg combination created fresh per optimization run.
type Parlay struct {
	ID                   uuid.UUID `json:"parlay_id"`
	Legs                 []Leg     `json:"legs"`
	CombinedDecimalOdds  float64   `json:"combined_odds"`
	CombinedAmericanOdds int       `json:"combined_american_odds"`
	RawProbability       float64   `json:"raw_probability"`
	CombinedProbability  float64   `json:"total_probability"`
	CorrelationScore     float64   `json:"correlation_score"`
	RiskScore            float64   `json:"risk_score"`
	ConfidenceScore      float64   `json:"confidence_score"`
	ExpectedValue        float64   `json:"expected_value"`
	KellyStakeFraction   float64   `json:"kelly_stake"`
	Warnings             []string  `json:"warnings"`
	CreatedAt            time.Time `json:"created_at"`
}

// SportsIncluded returns the distinct sports across all legs, in leg order.
func (p *Parlay) SportsIncluded() []string {
	seen := make(map[string]bool, len(p.Legs))
	sports := make([]string, 0, len(p.Legs))
	for _, leg := range p.Legs {
		if !seen[leg.Sport] {
			seen[leg.Sport] = true
			sports = append(sports, leg.Sport)
		}
	}
	return sports
}

// LegCount returns the number of legs in the parlay.
func (p *Parlay) LegCount() int {
	return len(p.Legs)
}
