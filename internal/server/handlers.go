package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/engine"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/model"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/risk"
)

// healthResponse is the JSON body of the /health endpoint.
type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// readyResponse is the JSON body of the /ready endpoint.
type readyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// trainingRequest submits a new model training job.
type trainingRequest struct {
	ModelType string `json:"model_type" validate:"required"`
}

// trainingUpdateRequest moves a training job through its lifecycle.
type trainingUpdateRequest struct {
	State   string `json:"state" validate:"required,oneof=running completed failed"`
	Message string `json:"message"`
}

// handleEvaluateMoneyline scores a slate of games for moneyline value.
func (s *Server) handleEvaluateMoneyline(w http.ResponseWriter, r *http.Request) {
	var req engine.MoneylineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	resp, err := s.engine.EvaluateMoneylines(r.Context(), req)
	if err != nil {
		s.logger.WithError(err).Error("Moneyline evaluation failed")
		respondError(w, http.StatusInternalServerError, "evaluation_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleOptimizeParlays builds ranked parlays for the requested risk tier.
func (s *Server) handleOptimizeParlays(w http.ResponseWriter, r *http.Request) {
	var req engine.ParlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	resp, err := s.engine.OptimizeParlays(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrUnknownRiskTier) {
			respondError(w, http.StatusBadRequest, "unknown_risk_tier", err.Error())
			return
		}
		s.logger.WithError(err).Error("Parlay optimization failed")
		respondError(w, http.StatusInternalServerError, "optimization_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleRiskTiers lists the four risk tiers and their thresholds.
func (s *Server) handleRiskTiers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tiers": risk.AllTiers(),
	})
}

// handleSubmitTraining registers a new pending training job.
func (s *Server) handleSubmitTraining(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	job := s.jobs.Submit(req.ModelType)
	s.logger.WithField("job_id", job.JobID).WithField("model_type", job.ModelType).Info("Training job submitted")

	respondJSON(w, http.StatusAccepted, job)
}

// handleListTrainingJobs lists all known training jobs, newest first.
func (s *Server) handleListTrainingJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": s.jobs.List(),
	})
}

// handleTrainingStatus returns the current state of one training job.
func (s *Server) handleTrainingStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_job_id", "job ID must be a UUID")
		return
	}

	job, err := s.jobs.Get(jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, "job_not_found", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// handleUpdateTrainingStatus transitions a training job to a new state.
// Terminal jobs are immutable and reject all updates.
func (s *Server) handleUpdateTrainingStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_job_id", "job ID must be a UUID")
		return
	}

	var req trainingUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	job, err := s.jobs.Transition(jobID, model.TrainingState(req.State), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrJobNotFound):
			respondError(w, http.StatusNotFound, "job_not_found", err.Error())
		case errors.Is(err, model.ErrJobAlreadyTerminal):
			respondError(w, http.StatusConflict, "job_terminal", err.Error())
		default:
			respondError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// handleHealth handles the /health endpoint. Basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   s.cfg.App.Name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// handleReady handles the /ready endpoint. Checks database connectivity
// and the probability model service.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	if s.modelHealth != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.modelHealth.HealthCheck(ctx); err != nil {
			allHealthy = false
			checks["model"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["model"] = "ok"
		}
	}

	resp := readyResponse{
		Service:  s.cfg.App.Name,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		resp.Status = "ok"
		respondJSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "not_ready"
	respondJSON(w, http.StatusServiceUnavailable, resp)
}
