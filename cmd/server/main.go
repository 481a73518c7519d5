// Package main provides the entry point for the odds engine API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/database"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/engine"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/logger"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/model"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/providers"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/repository"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/scheduler"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/server"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configFile := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Odds engine starting")

	// Initialize metrics registry
	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection and schema
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Initialize recording
	var recorder engine.Recorder
	if cfg.Betting.RecordingEnabled {
		recorder = repository.NewRecorder(db)
		appLog.Info("Assessment recording enabled")
	}

	// Initialize odds providers
	httpClient := providers.NewRateLimitedHTTPClient(providers.DefaultHTTPClientConfig(), appLog)
	defer httpClient.Close()

	factory := providers.NewFactory(appLog)
	provs, err := factory.NewProviders(cfg.Providers, httpClient)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build odds providers")
	}

	cacheTTL := 2 * time.Duration(cfg.Providers.PollIntervalSeconds) * time.Second
	quoteCache := providers.NewQuoteCache(cacheTTL)

	fetchTimeout := time.Duration(cfg.Providers.FetchTimeoutSeconds) * time.Second
	fetcher := providers.NewFetcher(provs, quoteCache, fetchTimeout, appLog)

	appLog.WithField("providers", len(provs)).Info("Odds providers initialized")

	// Start the push stream if a feed is configured
	if cfg.Providers.StreamURL != "" {
		stream := providers.NewStreamClient(cfg.Providers.StreamURL, quoteCache, appLog)
		go func() {
			if err := stream.Run(ctx); err != nil {
				appLog.WithError(err).Error("Quote stream stopped")
			}
		}()
		defer stream.Close()
	}

	// Initialize model client
	mlClient, err := model.NewClient(&cfg.Model, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create model client")
	}
	defer mlClient.Close()

	predictionCache := model.NewPredictionCache(
		time.Duration(cfg.Model.CacheTTLSeconds)*time.Second,
		cfg.Model.CacheMaxSize,
	)
	cachedClient := model.NewCachedClient(mlClient, predictionCache)

	appLog.WithField("model_url", cfg.Model.URL).Info("Model client initialized")

	// Create the engine
	eng := engine.NewWithPolicy(cachedClient, quoteCache, recorder, engine.Policy{
		KellyMultiplier:   cfg.Betting.KellyMultiplier,
		CorrelationWindow: time.Duration(cfg.Betting.TimeWindowMinutes) * time.Minute,
	}, appLog)

	// Schedule background polling
	sched := scheduler.NewScheduler(fetcher, cfg.Providers.Sports, appLog)
	if err := sched.SchedulePolling(cfg.Providers.PollIntervalSeconds); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule odds polling")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Start the API server
	apiServer := server.NewServer(server.Options{
		Config:      cfg,
		Engine:      eng,
		DB:          db,
		ModelHealth: mlClient,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
	})
	if err := apiServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start API server")
	}
	apiServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"addr":          cfg.ListenAddress(),
		"sports":        cfg.Providers.Sports,
		"poll_interval": cfg.Providers.PollIntervalSeconds,
	}).Info("Odds engine running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	apiServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if err := apiServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during server shutdown")
	}

	appLog.Info("Odds engine shut down successfully")
}
