// Package repository provides PostgreSQL persistence for computed outputs.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// AssessmentRepository persists value assessments
type AssessmentRepository interface {
	Save(ctx context.Context, assessments []models.ValueAssessment) error
	GetByGameID(ctx context.Context, gameID string) ([]models.ValueAssessment, error)
	GetRecent(ctx context.Context, since time.Time, limit int) ([]models.ValueAssessment, error)
}

// ParlayRepository persists built parlays
type ParlayRepository interface {
	Save(ctx context.Context, parlays []models.Parlay) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Parlay, error)
	GetRecent(ctx context.Context, since time.Time, limit int) ([]models.Parlay, error)
}
