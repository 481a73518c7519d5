// Package providers fetches odds from external sportsbook and data feeds.
package providers

import (
	"context"
	"errors"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// Provider defines the interface for fetching odds from an external feed
type Provider interface {
	// FetchOdds retrieves current odds for all upcoming games in a sport
	FetchOdds(ctx context.Context, sport string) ([]GameOdds, error)

	// Name returns the name of the provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// GameOdds represents one game's odds as reported by a single provider
type GameOdds struct {
	Game   models.Game       `json:"game"`
	Market models.MarketType `json:"market"`
	Quotes []models.Quote    `json:"quotes"`
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "provider_disabled"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrProviderDisabled     = errors.New("provider disabled")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
