package models

// RiskLevel names one of the four fixed risk tiers
type RiskLevel string

const (
	RiskConservative RiskLevel = "conservative"
	RiskModerate     RiskLevel = "moderate"
	RiskAggressive   RiskLevel = "aggressive"
	RiskYolo         RiskLevel = "yolo"
)

// RiskTier is a static threshold record used for filtering candidates.
// Tiers are product policy, never persisted per-bet.
type RiskTier struct {
	Name            RiskLevel `json:"name"`
	MinProbability  float64   `json:"min_probability"`
	MaxCorrelation  float64   `json:"max_correlation"`
	MinConfidence   float64   `json:"min_confidence"`
	KellyMultiplier float64   `json:"kelly_multiplier"`
	MaxLegs         int       `json:"max_legs"`
}

// ValidRiskLevel reports whether the string names a known tier.
func ValidRiskLevel(level string) bool {
	switch RiskLevel(level) {
	case RiskConservative, RiskModerate, RiskAggressive, RiskYolo:
		return true
	default:
		return false
	}
}
