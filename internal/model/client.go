// Package model provides the client for the external win probability service.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// Prediction is the model service's view of one game
type Prediction struct {
	GameID             string    `json:"game_id"`
	HomeWinProbability float64   `json:"home_win_probability"`
	AwayWinProbability float64   `json:"away_win_probability"`
	Confidence         *float64  `json:"confidence,omitempty"`
	ModelVersion       string    `json:"model_version"`
	PredictedAt        time.Time `json:"predicted_at"`
}

// predictionRequest is the payload sent to the model service
type predictionRequest struct {
	GameID   string `json:"game_id"`
	Sport    string `json:"sport"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	GameTime string `json:"game_time,omitempty"`
}

// Client talks to the model service. Predictions travel over HTTP; the
// service's gRPC health endpoint backs readiness checks.
type Client struct {
	httpClient *http.Client
	baseURL    string
	grpcConn   *grpc.ClientConn
	health     grpc_health_v1.HealthClient
	logger     *logrus.Logger
}

// NewClient creates a new model service client. The gRPC health connection
// is optional and only dialed when the config names an address.
func NewClient(cfg *config.ModelConfig, logger *logrus.Logger) (*Client, error) {
	client := &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL: cfg.URL,
		logger:  logger,
	}

	if cfg.GRPCAddress != "" {
		conn, err := dialHealth(cfg)
		if err != nil {
			logger.WithError(err).Error("Failed to connect to model service health endpoint")
			return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
		client.grpcConn = conn
		client.health = grpc_health_v1.NewHealthClient(conn)
		logger.WithField("address", cfg.GRPCAddress).Info("Connected to model service health endpoint")
	}

	return client, nil
}

// dialHealth establishes the gRPC connection used for health checks
func dialHealth(cfg *config.ModelConfig) (*grpc.ClientConn, error) {
	creds := grpc.WithTransportCredentials(insecure.NewCredentials())
	if cfg.UseTLS {
		creds = grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, ""))
	}

	connectParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  1 * time.Second,
			Multiplier: 1.6,
			Jitter:     0.2,
			MaxDelay:   5 * time.Second,
		},
		MinConnectTimeout: 10 * time.Second,
	}

	keepAlive := keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             10 * time.Second,
		PermitWithoutStream: true,
	}

	return grpc.NewClient(cfg.GRPCAddress,
		creds,
		grpc.WithConnectParams(connectParams),
		grpc.WithKeepaliveParams(keepAlive),
	)
}

// Predict fetches the model's win probabilities for one game
func (c *Client) Predict(ctx context.Context, game models.Game) (*Prediction, error) {
	reqBody := predictionRequest{
		GameID:   game.GameID,
		Sport:    game.Sport,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,
	}
	if !game.GameTime.IsZero() {
		reqBody.GameTime = game.GameTime.UTC().Format(time.RFC3339)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/predict", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNoPredictionForGame, game.GameID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prediction request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}

	if prediction.HomeWinProbability <= 0 || prediction.HomeWinProbability >= 1 ||
		prediction.AwayWinProbability <= 0 || prediction.AwayWinProbability >= 1 {
		return nil, fmt.Errorf("%w: probabilities out of range for game %s", ErrInvalidPrediction, game.GameID)
	}

	if prediction.GameID == "" {
		prediction.GameID = game.GameID
	}
	if prediction.PredictedAt.IsZero() {
		prediction.PredictedAt = time.Now().UTC()
	}

	return &prediction, nil
}

// WinProbability returns the modeled probability for one side of a game
func (c *Client) WinProbability(ctx context.Context, game models.Game, side models.Side) (float64, *float64, error) {
	prediction, err := c.Predict(ctx, game)
	if err != nil {
		return 0, nil, err
	}

	switch side {
	case models.SideAway:
		return prediction.AwayWinProbability, prediction.Confidence, nil
	default:
		return prediction.HomeWinProbability, prediction.Confidence, nil
	}
}

// HealthCheck verifies the model service is serving. It prefers the gRPC
// health endpoint and falls back to HTTP when gRPC is not configured.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.health != nil {
		resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
			return fmt.Errorf("%w: status %s", ErrServiceUnavailable, resp.Status)
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	return nil
}

// Close closes the gRPC connection
func (c *Client) Close() error {
	if c.grpcConn != nil {
		return c.grpcConn.Close()
	}
	return nil
}
