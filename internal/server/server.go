// Package server exposes the odds engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/engine"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/model"
)

// OddsEngine defines the evaluation operations the server exposes.
type OddsEngine interface {
	EvaluateMoneylines(ctx context.Context, req engine.MoneylineRequest) (engine.MoneylineResponse, error)
	OptimizeParlays(ctx context.Context, req engine.ParlayRequest) (engine.ParlayResponse, error)
}

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ModelHealthChecker defines the interface for checking the probability
// model service.
type ModelHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server is the HTTP API server for the odds engine.
type Server struct {
	cfg         *config.Config
	engine      OddsEngine
	jobs        *model.StatusStore
	db          DatabasePinger
	modelHealth ModelHealthChecker
	validate    *validator.Validate
	version     string
	commit      string
	server      *http.Server
	logger      *logrus.Logger
	mu          sync.RWMutex
	ready       bool
}

// Options holds the collaborators for the API server. DB and ModelHealth
// may be nil; the readiness check skips what is absent.
type Options struct {
	Config      *config.Config
	Engine      OddsEngine
	Jobs        *model.StatusStore
	DB          DatabasePinger
	ModelHealth ModelHealthChecker
	Version     string
	Commit      string
	Logger      *logrus.Logger
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	jobs := opts.Jobs
	if jobs == nil {
		jobs = model.NewStatusStore()
	}
	return &Server{
		cfg:         opts.Config,
		engine:      opts.Engine,
		jobs:        jobs,
		db:          opts.DB,
		modelHealth: opts.ModelHealth,
		validate:    validator.New(),
		version:     opts.Version,
		commit:      opts.Commit,
		logger:      opts.Logger,
		ready:       false,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start starts the API server in the background.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.ListenAddress(),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":    s.server.Addr,
			"service": s.cfg.App.Name,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
