package database

import (
	"context"
	"fmt"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS value_assessments (
	id UUID PRIMARY KEY,
	game_id TEXT NOT NULL,
	side TEXT NOT NULL,
	american_odds INTEGER NOT NULL,
	decimal_odds DOUBLE PRECISION NOT NULL,
	true_probability DOUBLE PRECISION NOT NULL,
	implied_probability DOUBLE PRECISION NOT NULL,
	edge DOUBLE PRECISION NOT NULL,
	expected_value DOUBLE PRECISION NOT NULL,
	kelly_fraction DOUBLE PRECISION NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	value_rating TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_value_assessments_game_id ON value_assessments (game_id);
CREATE INDEX IF NOT EXISTS idx_value_assessments_created_at ON value_assessments (created_at);

CREATE TABLE IF NOT EXISTS parlays (
	id UUID PRIMARY KEY,
	legs JSONB NOT NULL,
	combined_decimal_odds DOUBLE PRECISION NOT NULL,
	combined_american_odds INTEGER NOT NULL,
	raw_probability DOUBLE PRECISION NOT NULL,
	combined_probability DOUBLE PRECISION NOT NULL,
	correlation_score DOUBLE PRECISION NOT NULL,
	risk_score DOUBLE PRECISION NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	expected_value DOUBLE PRECISION NOT NULL,
	kelly_stake_fraction DOUBLE PRECISION NOT NULL,
	warnings TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_parlays_created_at ON parlays (created_at);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}
