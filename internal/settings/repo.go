package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/youscore/youscore-backend/pkg/db/models"
)

// Repository persists the single app settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Load(ctx context.Context) (*models.AppSettings, error)
	Replace(ctx context.Context, row *models.AppSettings) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Load(ctx context.Context) (*models.AppSettings, error) {
	var row models.AppSettings
	if err := r.db.WithContext(ctx).First(&row, "id = ?", models.SettingsRowID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Replace upserts the fixed row so a fresh database and a migrated one
// behave the same.
func (r *repositoryImpl) Replace(ctx context.Context, row *models.AppSettings) error {
	row.ID = models.SettingsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(row).Error
}
