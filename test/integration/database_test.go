//go:build integration

package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/config"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/database"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/repository"
)

const skipIntegration = "Skipping integration test in short mode"

// setupTestDB connects to the test database and ensures the schema exists.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:               envOr("TEST_DB_HOST", "localhost"),
			Port:               envIntOr("TEST_DB_PORT", 5432),
			Name:               envOr("TEST_DB_NAME", "odds_engine_test"),
			User:               envOr("TEST_DB_USER", "test"),
			Password:           envOr("TEST_DB_PASSWORD", "test"),
			SSLMode:            "disable",
			MaxConnections:     5,
			MaxIdleConnections: 2,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	require.NoError(t, err, "failed to initialize test database")
	return db
}

// teardownTestDB truncates the tables and closes the pool.
func teardownTestDB(t *testing.T, db *database.DB) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"value_assessments", "parlays"} {
		_, err := db.GetPool().Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err, "failed to truncate %s", table)
	}
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func testAssessment(gameID string, side models.Side) models.ValueAssessment {
	return models.ValueAssessment{
		GameID:             gameID,
		Side:               side,
		AmericanOdds:       120,
		DecimalOdds:        2.2,
		TrueProbability:    0.52,
		ImpliedProbability: 0.4545,
		Edge:               0.0655,
		ExpectedValue:      14.4,
		KellyFraction:      0.03,
		Confidence:         0.7,
		Rating:             models.RatingGood,
	}
}

func TestDatabaseRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := setupTestDB(t)
	defer teardownTestDB(t, db)

	t.Run("AssessmentRepository", func(t *testing.T) {
		repo := repository.NewPostgresAssessmentRepository(db)

		assessments := []models.ValueAssessment{
			testAssessment("int-g1", models.SideHome),
			testAssessment("int-g1", models.SideAway),
			testAssessment("int-g2", models.SideHome),
		}
		require.NoError(t, repo.Save(ctx, assessments))

		byGame, err := repo.GetByGameID(ctx, "int-g1")
		require.NoError(t, err)
		assert.Len(t, byGame, 2)
		for _, a := range byGame {
			assert.Equal(t, "int-g1", a.GameID)
			assert.Equal(t, models.RatingGood, a.Rating)
		}

		recent, err := repo.GetRecent(ctx, time.Now().Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Len(t, recent, 3)

		limited, err := repo.GetRecent(ctx, time.Now().Add(-time.Hour), 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("ParlayRepository", func(t *testing.T) {
		repo := repository.NewPostgresParlayRepository(db)

		parlay := models.Parlay{
			ID: uuid.New(),
			Legs: []models.Leg{
				{Assessment: testAssessment("int-g1", models.SideHome), Sport: "nba", Team: "Lakers", BetType: "moneyline"},
				{Assessment: testAssessment("int-g2", models.SideAway), Sport: "nba", Team: "Celtics", BetType: "moneyline"},
			},
			CombinedDecimalOdds:  4.84,
			CombinedAmericanOdds: 384,
			RawProbability:       0.2704,
			CombinedProbability:  0.2704,
			CorrelationScore:     0.25,
			RiskScore:            0.4,
			ConfidenceScore:      0.7,
			ExpectedValue:        0.31,
			KellyStakeFraction:   0.02,
			Warnings:             []string{"legs share one sport"},
			CreatedAt:            time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, repo.Save(ctx, []models.Parlay{parlay}))

		got, err := repo.GetByID(ctx, parlay.ID)
		require.NoError(t, err)
		assert.Equal(t, parlay.ID, got.ID)
		require.Len(t, got.Legs, 2)
		assert.Equal(t, "Lakers", got.Legs[0].Team)
		assert.Equal(t, parlay.Warnings, got.Warnings)
		assert.InDelta(t, parlay.CombinedDecimalOdds, got.CombinedDecimalOdds, 1e-9)

		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, models.ErrNotFound)

		recent, err := repo.GetRecent(ctx, time.Now().Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})
}
