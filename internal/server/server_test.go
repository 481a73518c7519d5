package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/engine"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/model"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

type stubEngine struct {
	moneylineResp engine.MoneylineResponse
	moneylineErr  error
	parlayResp    engine.ParlayResponse
	parlayErr     error
}

func (s *stubEngine) EvaluateMoneylines(ctx context.Context, req engine.MoneylineRequest) (engine.MoneylineResponse, error) {
	return s.moneylineResp, s.moneylineErr
}

func (s *stubEngine) OptimizeParlays(ctx context.Context, req engine.ParlayRequest) (engine.ParlayResponse, error) {
	return s.parlayResp, s.parlayErr
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "odds-engine-test",
			Environment: "development",
			LogLevel:    "error",
		},
		Server: config.ServerConfig{
			Host:                "127.0.0.1",
			Port:                8080,
			ReadTimeoutSeconds:  5,
			WriteTimeoutSeconds: 10,
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func testServer(eng OddsEngine, db DatabasePinger) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewServer(Options{
		Config: testConfig(),
		Engine: eng,
		DB:     db,
		Logger: logger,
	})
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getPath(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateMoneylineSuccess(t *testing.T) {
	eng := &stubEngine{
		moneylineResp: engine.MoneylineResponse{
			Sport:          "nba",
			Bets:           []engine.ValueBet{{GameID: "g1", Team: "Lakers", AmericanOdds: 120, Edge: 0.05}},
			GamesEvaluated: 1,
		},
	}
	router := testServer(eng, nil).Router()

	rec := postJSON(t, router, "/api/v1/evaluate/moneyline", engine.MoneylineRequest{
		Sport:   "nba",
		MinEdge: 0.02,
		Games: []models.Game{
			{GameID: "g1", Sport: "nba", HomeTeam: "Lakers", AwayTeam: "Celtics", HomeMoneyline: 120, AwayMoneyline: -140},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp engine.MoneylineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "nba", resp.Sport)
	assert.Len(t, resp.Bets, 1)
	assert.Equal(t, 1, resp.GamesEvaluated)
}

func TestEvaluateMoneylineRejectsEmptySlate(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := postJSON(t, router, "/api/v1/evaluate/moneyline", engine.MoneylineRequest{
		Sport: "nba",
		Games: []models.Game{},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "validation_failed", resp.Error)
}

func TestEvaluateMoneylineRejectsBadJSON(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate/moneyline", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestOptimizeParlaysUnknownTier(t *testing.T) {
	eng := &stubEngine{
		parlayErr: fmt.Errorf("%w: %q", models.ErrUnknownRiskTier, "degenerate"),
	}
	router := testServer(eng, nil).Router()

	// risk_level passes the oneof validation; the stub returns the tier error.
	rec := postJSON(t, router, "/api/v1/parlays/optimize", engine.ParlayRequest{
		RiskLevel: "moderate",
		Games: []models.Game{
			{GameID: "g1", Sport: "nba", HomeTeam: "A", AwayTeam: "B"},
			{GameID: "g2", Sport: "nba", HomeTeam: "C", AwayTeam: "D"},
		},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unknown_risk_tier", resp.Error)
}

func TestOptimizeParlaysRejectsBadRiskLevel(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := postJSON(t, router, "/api/v1/parlays/optimize", engine.ParlayRequest{
		RiskLevel: "reckless",
		Games: []models.Game{
			{GameID: "g1", Sport: "nba", HomeTeam: "A", AwayTeam: "B"},
			{GameID: "g2", Sport: "nba", HomeTeam: "C", AwayTeam: "D"},
		},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeParlaysSuccess(t *testing.T) {
	eng := &stubEngine{
		parlayResp: engine.ParlayResponse{
			RiskLevel: "moderate",
			Parlays: []engine.ParlayCandidate{
				{ParlayID: "p1", CombinedOdds: 3.64, ExpectedValue: 0.12},
			},
		},
	}
	router := testServer(eng, nil).Router()

	rec := postJSON(t, router, "/api/v1/parlays/optimize", engine.ParlayRequest{
		RiskLevel: "moderate",
		Games: []models.Game{
			{GameID: "g1", Sport: "nba", HomeTeam: "A", AwayTeam: "B"},
			{GameID: "g2", Sport: "nba", HomeTeam: "C", AwayTeam: "D"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp engine.ParlayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "moderate", resp.RiskLevel)
	assert.Len(t, resp.Parlays, 1)
}

func TestRiskTiersEndpoint(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := getPath(router, "/api/v1/risk/tiers")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tiers []models.RiskTier `json:"tiers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tiers, 4)
	assert.Equal(t, models.RiskConservative, resp.Tiers[0].Name)
	assert.Equal(t, models.RiskYolo, resp.Tiers[3].Name)
}

func TestTrainingJobLifecycleOverHTTP(t *testing.T) {
	srv := testServer(&stubEngine{}, nil)
	router := srv.Router()

	rec := postJSON(t, router, "/api/v1/model/train", trainingRequest{ModelType: "moneyline"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job model.TrainingJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, model.TrainingPending, job.State)

	statusPath := "/api/v1/model/train/" + job.JobID.String() + "/status"

	rec = postJSON(t, router, statusPath, trainingUpdateRequest{State: "running"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, statusPath, trainingUpdateRequest{State: "completed", Message: "auc 0.71"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getPath(router, statusPath)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, model.TrainingCompleted, job.State)
	assert.Equal(t, "auc 0.71", job.Message)
	assert.NotNil(t, job.FinishedAt)

	// Terminal jobs reject further updates.
	rec = postJSON(t, router, statusPath, trainingUpdateRequest{State: "failed"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestTrainingStatusUnknownJob(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := getPath(router, "/api/v1/model/train/0b38d63a-58a1-4f14-b9a3-0f37b0f0a5f1/status")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrainingStatusBadJobID(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := getPath(router, "/api/v1/model/train/not-a-uuid/status")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainingInvalidTransition(t *testing.T) {
	srv := testServer(&stubEngine{}, nil)
	router := srv.Router()

	rec := postJSON(t, router, "/api/v1/model/train", trainingRequest{ModelType: "moneyline"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job model.TrainingJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))

	// pending cannot jump straight to completed
	rec = postJSON(t, router, "/api/v1/model/train/"+job.JobID.String()+"/status",
		trainingUpdateRequest{State: "completed"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListTrainingJobs(t *testing.T) {
	srv := testServer(&stubEngine{}, nil)
	router := srv.Router()

	postJSON(t, router, "/api/v1/model/train", trainingRequest{ModelType: "moneyline"})
	postJSON(t, router, "/api/v1/model/train", trainingRequest{ModelType: "spread"})

	rec := getPath(router, "/api/v1/model/train")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Jobs []model.TrainingJob `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Jobs, 2)
}

func TestHealthEndpoint(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := getPath(router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "odds-engine-test", resp.Service)
}

func TestReadyNotReadyBeforeSetReady(t *testing.T) {
	srv := testServer(&stubEngine{}, nil)
	router := srv.Router()

	rec := getPath(router, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec = getPath(router, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReportsDatabaseFailure(t *testing.T) {
	srv := testServer(&stubEngine{}, &stubPinger{err: errors.New("connection refused")})
	srv.SetReady(true)
	router := srv.Router()

	rec := getPath(router, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp readyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Contains(t, resp.Checks["database"], "connection refused")
}

func TestMetricsEndpointServed(t *testing.T) {
	router := testServer(&stubEngine{}, nil).Router()

	rec := getPath(router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
}
