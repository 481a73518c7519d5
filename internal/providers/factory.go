package providers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
)

// Factory creates Provider implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new provider factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewProvider creates a new Provider based on the provided configuration
func (f *Factory) NewProvider(cfg config.ProviderConfig, httpClient *RateLimitedHTTPClient) (Provider, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	switch cfg.Name {
	case espnProviderName:
		return NewESPNClient(httpClient, cfg.BaseURL, cfg.Enabled, f.logger), nil

	case draftKingsProviderName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("DraftKings API key is required")
		}
		return NewDraftKingsClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	case fanDuelProviderName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("FanDuel API key is required")
		}
		return NewFanDuelClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	case betMGMProviderName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("BetMGM API key is required")
		}
		return NewBetMGMClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	case sportsDataIOProviderName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("SportsDataIO subscription key is required")
		}
		return NewSportsDataIOClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}

// NewProviders creates all enabled providers from configuration
func (f *Factory) NewProviders(cfg config.ProvidersConfig, httpClient *RateLimitedHTTPClient) ([]Provider, error) {
	var built []Provider

	for _, srcCfg := range cfg.Sources {
		if !srcCfg.Enabled {
			f.logger.WithField("provider", srcCfg.Name).Info("Skipping disabled provider")
			continue
		}

		provider, err := f.NewProvider(srcCfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s: %w", srcCfg.Name, err)
		}

		built = append(built, provider)
		f.logger.WithField("provider", srcCfg.Name).Info("Created provider")
	}

	if len(built) == 0 {
		return nil, fmt.Errorf("no enabled providers configured")
	}

	return built, nil
}
