package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/odds-engine")
	}

	// Environment variable overrides, e.g. ODDS_ENGINE_DATABASE_PASSWORD
	v.SetEnvPrefix("ODDS_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable, continue with env vars and defaults
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "odds-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "odds_engine")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)

	// Provider defaults
	v.SetDefault("providers.poll_interval_seconds", 60)
	v.SetDefault("providers.fetch_timeout_seconds", 10)
	v.SetDefault("providers.sports", []string{"nba", "nfl", "mlb", "nhl"})

	// Model service defaults
	v.SetDefault("model.timeout_seconds", 5)
	v.SetDefault("model.retry_attempts", 3)
	v.SetDefault("model.cache_ttl_seconds", 300)
	v.SetDefault("model.cache_max_size", 1000)

	// Betting policy defaults
	v.SetDefault("betting.kelly_multiplier", 0.25)
	v.SetDefault("betting.min_edge", 0.02)
	v.SetDefault("betting.default_risk_level", "moderate")
	v.SetDefault("betting.max_parlays", 5)
	v.SetDefault("betting.time_window_minutes", 30)
	v.SetDefault("betting.recording_enabled", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// expandEnvVars expands ${VAR} references in string settings so secrets
// can be injected without committing them to the config file.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		value := v.Get(key)
		if str, ok := value.(string); ok && strings.Contains(str, "${") {
			v.Set(key, os.ExpandEnv(str))
		}
	}
}
