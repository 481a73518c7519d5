package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// CustomValidator wraps the validator with domain rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator creates a validator with custom validation rules
func NewCustomValidator() (*CustomValidator, error) {
	v := validator.New()

	if err := v.RegisterValidation("environment", validateEnvironment); err != nil {
		return nil, fmt.Errorf("failed to register environment validator: %w", err)
	}

	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return nil, fmt.Errorf("failed to register loglevel validator: %w", err)
	}

	if err := v.RegisterValidation("risktier", validateRiskTier); err != nil {
		return nil, fmt.Errorf("failed to register risktier validator: %w", err)
	}

	return &CustomValidator{validator: v}, nil
}

// Validate validates a struct using the custom validator
func (cv *CustomValidator) Validate(s interface{}) error {
	return cv.validator.Struct(s)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	}
	return false
}

func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func validateRiskTier(fl validator.FieldLevel) bool {
	return models.ValidRiskLevel(fl.Field().String())
}

// ValidateConfig validates the complete configuration with cross-field checks
func ValidateConfig(cfg *Config) error {
	cv, err := NewCustomValidator()
	if err != nil {
		return err
	}

	if err := cv.Validate(cfg); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("database max_idle_connections (%d) cannot exceed max_connections (%d)",
			cfg.Database.MaxIdleConnections, cfg.Database.MaxConnections)
	}

	if len(cfg.EnabledProviders()) == 0 {
		return fmt.Errorf("at least one odds provider must be enabled")
	}

	for _, p := range cfg.EnabledProviders() {
		if p.BaseURL == "" {
			return fmt.Errorf("provider %s is enabled but has no base_url", p.Name)
		}
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database ssl_mode cannot be disable in production")
	}

	return nil
}
