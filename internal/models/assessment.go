package models

// ValueRating is a qualitative grade of a bet's expected value
type ValueRating string

const (
	RatingPoor      ValueRating = "poor"
	RatingModerate  ValueRating = "moderate"
	RatingGood      ValueRating = "good"
	RatingExcellent ValueRating = "excellent"
)

// ValueAssessment is the per-side value breakdown for one game.
// Derived and stateless: recomputed per request, never stored mutably.
type ValueAssessment struct {
	GameID             string      `json:"game_id" validate:"required"`
	Side               Side        `json:"side" validate:"required"`
	AmericanOdds       int         `json:"american_odds"`
	DecimalOdds        float64     `json:"decimal_odds"`
	TrueProbability    float64     `json:"true_probability" validate:"gt=0,lt=1"`
	ImpliedProbability float64     `json:"implied_probability" validate:"gt=0,lt=1"`
	Edge               float64     `json:"edge"`
	ExpectedValue      float64     `json:"expected_value"`
	KellyFraction      float64     `json:"kelly_criterion"`
	Confidence         float64     `json:"confidence_score" validate:"gte=0,lte=1"`
	Rating             ValueRating `json:"value_rating"`
}

// IsValueBet reports whether the assessment shows an edge worth taking.
func (a *ValueAssessment) IsValueBet(minEdge float64) bool {
	return a.Edge >= minEdge && a.ExpectedValue > 0
}
