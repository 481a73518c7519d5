package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/database"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

const errScanAssessment = "failed to scan assessment: %w"

// PostgresAssessmentRepository implements AssessmentRepository for PostgreSQL
type PostgresAssessmentRepository struct {
	db *database.DB
}

// NewPostgresAssessmentRepository creates a new assessment repository
func NewPostgresAssessmentRepository(db *database.DB) AssessmentRepository {
	return &PostgresAssessmentRepository{db: db}
}

// Save inserts a batch of assessments
func (r *PostgresAssessmentRepository) Save(ctx context.Context, assessments []models.ValueAssessment) error {
	if len(assessments) == 0 {
		return nil
	}

	query := `
		INSERT INTO value_assessments (
			id, game_id, side, american_odds, decimal_odds, true_probability,
			implied_probability, edge, expected_value, kelly_fraction, confidence, value_rating
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, a := range assessments {
			_, err := r.db.GetPool().Exec(txCtx, query,
				uuid.New(), a.GameID, a.Side, a.AmericanOdds, a.DecimalOdds, a.TrueProbability,
				a.ImpliedProbability, a.Edge, a.ExpectedValue, a.KellyFraction, a.Confidence, a.Rating,
			)
			if err != nil {
				return fmt.Errorf("failed to save assessment for game %s: %w", a.GameID, err)
			}
		}
		return nil
	})
}

// GetByGameID retrieves all stored assessments for a game
func (r *PostgresAssessmentRepository) GetByGameID(ctx context.Context, gameID string) ([]models.ValueAssessment, error) {
	query := `
		SELECT game_id, side, american_odds, decimal_odds, true_probability,
		       implied_probability, edge, expected_value, kelly_fraction, confidence, value_rating
		FROM value_assessments
		WHERE game_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows)
}

// GetRecent retrieves assessments created after the given time
func (r *PostgresAssessmentRepository) GetRecent(ctx context.Context, since time.Time, limit int) ([]models.ValueAssessment, error) {
	query := `
		SELECT game_id, side, american_odds, decimal_odds, true_probability,
		       implied_probability, edge, expected_value, kelly_fraction, confidence, value_rating
		FROM value_assessments
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent assessments: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows)
}

type assessmentRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAssessments(rows assessmentRows) ([]models.ValueAssessment, error) {
	var assessments []models.ValueAssessment
	for rows.Next() {
		var a models.ValueAssessment
		err := rows.Scan(
			&a.GameID, &a.Side, &a.AmericanOdds, &a.DecimalOdds, &a.TrueProbability,
			&a.ImpliedProbability, &a.Edge, &a.ExpectedValue, &a.KellyFraction, &a.Confidence, &a.Rating,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanAssessment, err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}
