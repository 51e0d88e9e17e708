package predictions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
)

// Repository exposes prediction persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, rows []*models.Prediction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	UpdateResult(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListPending(ctx context.Context) ([]models.Prediction, error)
	ListHistory(ctx context.Context) ([]models.Prediction, error)
	ListGraded(ctx context.Context) ([]models.Prediction, error)
	ListInRange(ctx context.Context, start, end time.Time) ([]models.Prediction, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a predictions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, rows []*models.Prediction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	var row models.Prediction
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateResult writes the grade and the score together; a missing score
// clears any previously stored one.
func (r *repositoryImpl) UpdateResult(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (bool, error) {
	updates := map[string]any{"result": result, "final_score": finalScore}
	res := r.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Prediction{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListPending(ctx context.Context) ([]models.Prediction, error) {
	var rows []models.Prediction
	err := r.db.WithContext(ctx).
		Where("result = ?", enums.PredictionResultPending).
		Order("match_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListHistory(ctx context.Context) ([]models.Prediction, error) {
	var rows []models.Prediction
	err := r.db.WithContext(ctx).
		Where("result <> ?", enums.PredictionResultPending).
		Order("match_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListGraded(ctx context.Context) ([]models.Prediction, error) {
	var rows []models.Prediction
	err := r.db.WithContext(ctx).
		Where("result <> ?", enums.PredictionResultPending).
		Order("match_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListInRange selects the half-open [start, end) window used for
// segment-level guarantee checks.
func (r *repositoryImpl) ListInRange(ctx context.Context, start, end time.Time) ([]models.Prediction, error) {
	var rows []models.Prediction
	err := r.db.WithContext(ctx).
		Where("match_date >= ? AND match_date < ?", start, end).
		Order("match_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
