package predictions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
)

func setupPredictionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS predictions (
  id TEXT PRIMARY KEY,
  match_date DATETIME NOT NULL,
  league TEXT NOT NULL,
  "match" TEXT NOT NULL,
  tip TEXT NOT NULL,
  odds NUMERIC NOT NULL,
  result TEXT NOT NULL DEFAULT 'Pending',
  prediction_type TEXT NOT NULL DEFAULT 'small',
  confidence INTEGER,
  recommended_stake INTEGER,
  prob_max NUMERIC,
  final_score TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS predictions`).Error)
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedPrediction(t *testing.T, db *gorm.DB, mutate func(*models.Prediction)) *models.Prediction {
	t.Helper()
	row := &models.Prediction{
		ID:        uuid.New(),
		MatchDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		League:    "Eng Premier League",
		Match:     "A vs B",
		Tip:       "A Win",
		Odds:      decimal.RequireFromString("1.85"),
		Result:    enums.PredictionResultPending,
		Type:      enums.PredictionTypeSmall,
	}
	if mutate != nil {
		mutate(row)
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepoCreateBatchAndFind(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rows := []*models.Prediction{
		{
			ID:        uuid.New(),
			MatchDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			League:    "Serie A",
			Match:     "C vs D",
			Tip:       "Over 2.5",
			Odds:      decimal.RequireFromString("2.10"),
			Result:    enums.PredictionResultPending,
			Type:      enums.PredictionTypeBig,
		},
	}
	require.NoError(t, repo.CreateBatch(ctx, rows))

	found, err := repo.FindByID(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Serie A", found.League)
	assert.True(t, found.Odds.Equal(decimal.RequireFromString("2.10")))
	assert.Equal(t, enums.PredictionTypeBig, found.Type)
}

func TestRepoListPendingOrdering(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	later := seedPrediction(t, db, func(p *models.Prediction) {
		p.MatchDate = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	})
	earlier := seedPrediction(t, db, func(p *models.Prediction) {
		p.MatchDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	})
	seedPrediction(t, db, func(p *models.Prediction) {
		p.Result = enums.PredictionResultWon
	})

	rows, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, earlier.ID, rows[0].ID)
	assert.Equal(t, later.ID, rows[1].ID)
}

func TestRepoListHistoryOrdering(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := seedPrediction(t, db, func(p *models.Prediction) {
		p.MatchDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
		p.Result = enums.PredictionResultWon
	})
	newer := seedPrediction(t, db, func(p *models.Prediction) {
		p.MatchDate = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
		p.Result = enums.PredictionResultLoss
	})
	seedPrediction(t, db, nil)

	rows, err := repo.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestRepoUpdateResult(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedPrediction(t, db, nil)

	score := "2-1"
	updated, err := repo.UpdateResult(ctx, row.ID, enums.PredictionResultWon, &score)
	require.NoError(t, err)
	assert.True(t, updated)

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PredictionResultWon, found.Result)
	require.NotNil(t, found.FinalScore)
	assert.Equal(t, "2-1", *found.FinalScore)

	updated, err = repo.UpdateResult(ctx, uuid.New(), enums.PredictionResultLoss, nil)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestRepoUpdateResultClearsScoreWhenAbsent(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedPrediction(t, db, nil)

	score := "2-1"
	updated, err := repo.UpdateResult(ctx, row.ID, enums.PredictionResultWon, &score)
	require.NoError(t, err)
	require.True(t, updated)

	// re-grading without a score drops the stale one
	updated, err = repo.UpdateResult(ctx, row.ID, enums.PredictionResultReturn, nil)
	require.NoError(t, err)
	require.True(t, updated)

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PredictionResultReturn, found.Result)
	assert.Nil(t, found.FinalScore)
}

func TestRepoListInRangeBoundaries(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	inside := seedPrediction(t, db, func(p *models.Prediction) { p.MatchDate = start })
	seedPrediction(t, db, func(p *models.Prediction) { p.MatchDate = end })
	seedPrediction(t, db, func(p *models.Prediction) { p.MatchDate = start.Add(-time.Second) })

	rows, err := repo.ListInRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inside.ID, rows[0].ID)
}

func TestRepoDelete(t *testing.T) {
	db := setupPredictionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedPrediction(t, db, nil)

	removed, err := repo.Delete(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
