package engine

import (
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// MoneylineRequest asks for per-side value assessments across a slate of games.
type MoneylineRequest struct {
	Sport   string        `json:"sport" validate:"required"`
	MinEdge float64       `json:"min_edge" validate:"gte=0"`
	Games   []models.Game `json:"games" validate:"required,min=1,dive"`
}

// ValueBet is one side of one game that cleared the edge threshold.
type ValueBet struct {
	GameID             string             `json:"game_id"`
	Team               string             `json:"team"`
	AmericanOdds       int                `json:"american_odds"`
	DecimalOdds        float64            `json:"decimal_odds"`
	ImpliedProbability float64            `json:"implied_probability"`
	TrueProbability    float64            `json:"true_probability"`
	ExpectedValue      float64            `json:"expected_value"`
	Edge               float64            `json:"edge"`
	KellyCriterion     float64            `json:"kelly_criterion"`
	ConfidenceScore    float64            `json:"confidence_score"`
	ValueRating        models.ValueRating `json:"value_rating"`
}

// MoneylineResponse carries partial successful results plus a count of
// skipped games; one bad game never fails the batch.
type MoneylineResponse struct {
	Sport          string     `json:"sport"`
	Bets           []ValueBet `json:"value_bets"`
	GamesEvaluated int        `json:"games_evaluated"`
	GamesSkipped   int        `json:"games_skipped"`
}

// ParlayRequest asks for optimized parlays under a named risk tier.
type ParlayRequest struct {
	RiskLevel        string        `json:"risk_level" validate:"required,oneof=conservative moderate aggressive yolo"`
	MaxParlays       int           `json:"max_parlays" validate:"gte=0"`
	Sports           []string      `json:"sports"`
	MinConfidence    float64       `json:"min_confidence" validate:"gte=0,lte=1"`
	MinExpectedValue float64       `json:"min_expected_value"`
	MaxCorrelation   float64       `json:"max_correlation" validate:"gte=0,lte=1"`
	Games            []models.Game `json:"games" validate:"required,min=2,dive"`
}

// ParlayLeg is the response view of one leg.
type ParlayLeg struct {
	Team        string  `json:"team"`
	BetType     string  `json:"bet_type"`
	Line        float64 `json:"line"`
	Odds        int     `json:"odds"`
	Probability float64 `json:"probability"`
	Sport       string  `json:"sport"`
}

// ParlayCandidate is the response view of one optimized parlay.
type ParlayCandidate struct {
	ParlayID         string      `json:"parlay_id"`
	Legs             []ParlayLeg `json:"legs"`
	CombinedOdds     float64     `json:"combined_odds"`
	TotalProbability float64     `json:"total_probability"`
	ExpectedValue    float64     `json:"expected_value"`
	RiskScore        float64     `json:"risk_score"`
	ConfidenceScore  float64     `json:"confidence_score"`
	CorrelationScore float64     `json:"correlation_score"`
	KellyStake       float64     `json:"kelly_stake"`
	Warnings         []string    `json:"warnings"`
	SportsIncluded   []string    `json:"sports_included"`
}

// ParlayResponse lists ranked parlays for the requested tier.
type ParlayResponse struct {
	RiskLevel    string            `json:"risk_level"`
	Parlays      []ParlayCandidate `json:"parlays"`
	GamesSkipped int               `json:"games_skipped"`
}
