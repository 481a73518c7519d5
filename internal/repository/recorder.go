package repository

import (
	"context"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/database"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// Recorder bundles the repositories behind the engine's persistence hook
type Recorder struct {
	assessments AssessmentRepository
	parlays     ParlayRepository
}

// NewRecorder creates a recorder over the given database
func NewRecorder(db *database.DB) *Recorder {
	return &Recorder{
		assessments: NewPostgresAssessmentRepository(db),
		parlays:     NewPostgresParlayRepository(db),
	}
}

// SaveAssessments persists a batch of value assessments
func (r *Recorder) SaveAssessments(ctx context.Context, assessments []models.ValueAssessment) error {
	return r.assessments.Save(ctx, assessments)
}

// SaveParlays persists a batch of parlays
func (r *Recorder) SaveParlays(ctx context.Context, parlays []models.Parlay) error {
	return r.parlays.Save(ctx, parlays)
}

// Assessments exposes the assessment repository
func (r *Recorder) Assessments() AssessmentRepository {
	return r.assessments
}

// Parlays exposes the parlay repository
func (r *Recorder) Parlays() ParlayRepository {
	return r.parlays
}
