// Package config provides configuration management for the odds engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Providers ProvidersConfig `mapstructure:"providers" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Betting   BettingConfig   `mapstructure:"betting" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Host                string   `mapstructure:"host"`
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	CORSOrigins         []string `mapstructure:"cors_origins"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ProvidersConfig represents odds provider acquisition configuration
type ProvidersConfig struct {
	PollIntervalSeconds int              `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
	FetchTimeoutSeconds int              `mapstructure:"fetch_timeout_seconds" validate:"required,gt=0"`
	StreamURL           string           `mapstructure:"stream_url"`
	Sports              []string         `mapstructure:"sports" validate:"required,min=1"`
	Sources             []ProviderConfig `mapstructure:"sources" validate:"required,min=1,dive"`
}

// ProviderConfig represents a single odds provider
type ProviderConfig struct {
	Name      string  `mapstructure:"name" validate:"required"`
	Enabled   bool    `mapstructure:"enabled"`
	BaseURL   string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey    string  `mapstructure:"api_key"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// ModelConfig represents the external probability model service
type ModelConfig struct {
	URL             string `mapstructure:"url" validate:"required,url"`
	GRPCAddress     string `mapstructure:"grpc_address"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts   int    `mapstructure:"retry_attempts" validate:"gte=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize    int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
	UseTLS          bool   `mapstructure:"use_tls"`
}

// BettingConfig represents staking and evaluation policy
type BettingConfig struct {
	KellyMultiplier   float64 `mapstructure:"kelly_multiplier" validate:"required,gt=0,lte=1"`
	MinEdge           float64 `mapstructure:"min_edge" validate:"gte=0,lte=1"`
	DefaultRiskLevel  string  `mapstructure:"default_risk_level" validate:"required,risktier"`
	MaxParlays        int     `mapstructure:"max_parlays" validate:"required,gt=0"`
	TimeWindowMinutes int     `mapstructure:"time_window_minutes" validate:"required,gt=0"`
	RecordingEnabled  bool    `mapstructure:"recording_enabled"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ListenAddress returns the host:port pair the API server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// EnabledProviders returns the providers that are switched on
func (c *Config) EnabledProviders() []ProviderConfig {
	enabled := make([]ProviderConfig, 0, len(c.Providers.Sources))
	for _, p := range c.Providers.Sources {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}
