package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/database"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

const errScanParlay = "failed to scan parlay: %w"

// PostgresParlayRepository implements ParlayRepository for PostgreSQL
type PostgresParlayRepository struct {
	db *database.DB
}

// NewPostgresParlayRepository creates a new parlay repository
func NewPostgresParlayRepository(db *database.DB) ParlayRepository {
	return &PostgresParlayRepository{db: db}
}

// Save inserts a batch of parlays. Legs are stored as JSONB.
func (r *PostgresParlayRepository) Save(ctx context.Context, parlays []models.Parlay) error {
	if len(parlays) == 0 {
		return nil
	}

	query := `
		INSERT INTO parlays (
			id, legs, combined_decimal_odds, combined_american_odds, raw_probability,
			combined_probability, correlation_score, risk_score, confidence_score,
			expected_value, kelly_stake_fraction, warnings, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, p := range parlays {
			legs, err := json.Marshal(p.Legs)
			if err != nil {
				return fmt.Errorf("failed to marshal parlay legs: %w", err)
			}

			warnings := p.Warnings
			if warnings == nil {
				warnings = []string{}
			}

			_, err = r.db.GetPool().Exec(txCtx, query,
				p.ID, legs, p.CombinedDecimalOdds, p.CombinedAmericanOdds, p.RawProbability,
				p.CombinedProbability, p.CorrelationScore, p.RiskScore, p.ConfidenceScore,
				p.ExpectedValue, p.KellyStakeFraction, warnings, p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to save parlay %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a parlay by ID
func (r *PostgresParlayRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Parlay, error) {
	query := `
		SELECT id, legs, combined_decimal_odds, combined_american_odds, raw_probability,
		       combined_probability, correlation_score, risk_score, confidence_score,
		       expected_value, kelly_stake_fraction, warnings, created_at
		FROM parlays WHERE id = $1
	`

	p, err := scanParlay(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parlay: %w", err)
	}
	return p, nil
}

// GetRecent retrieves parlays created after the given time
func (r *PostgresParlayRepository) GetRecent(ctx context.Context, since time.Time, limit int) ([]models.Parlay, error) {
	query := `
		SELECT id, legs, combined_decimal_odds, combined_american_odds, raw_probability,
		       combined_probability, correlation_score, risk_score, confidence_score,
		       expected_value, kelly_stake_fraction, warnings, created_at
		FROM parlays
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent parlays: %w", err)
	}
	defer rows.Close()

	var parlays []models.Parlay
	for rows.Next() {
		p, err := scanParlay(rows)
		if err != nil {
			return nil, err
		}
		parlays = append(parlays, *p)
	}
	return parlays, rows.Err()
}

type parlayRow interface {
	Scan(dest ...any) error
}

func scanParlay(row parlayRow) (*models.Parlay, error) {
	var p models.Parlay
	var legs []byte

	err := row.Scan(
		&p.ID, &legs, &p.CombinedDecimalOdds, &p.CombinedAmericanOdds, &p.RawProbability,
		&p.CombinedProbability, &p.CorrelationScore, &p.RiskScore, &p.ConfidenceScore,
		&p.ExpectedValue, &p.KellyStakeFraction, &p.Warnings, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanParlay, err)
	}

	if err := json.Unmarshal(legs, &p.Legs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parlay legs: %w", err)
	}
	return &p, nil
}
