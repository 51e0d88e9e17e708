package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	"github.com/youscore/youscore-backend/pkg/pagination"
)

// Repository exposes user and device persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.User, *pagination.Cursor, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
	GrantFreeAccess(ctx context.Context, column string, expiry time.Time) (int64, error)
	AdmitDevice(ctx context.Context, userID uuid.UUID, deviceID string, limit int) (bool, error)
	RemoveLatestDevice(ctx context.Context, userID uuid.UUID) (bool, error)
	CountDevices(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a users repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List pages user rows oldest-first using keyset pagination.
func (r *repositoryImpl) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.User, *pagination.Cursor, error) {
	buffered := pagination.Probe(limit)
	normalized := pagination.Clamp(limit)
	query := r.db.WithContext(ctx).Model(&models.User{})
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var users []models.User
	if err := query.Order("created_at ASC, id ASC").Limit(buffered).Find(&users).Error; err != nil {
		return nil, nil, err
	}

	if len(users) > normalized {
		users = users[:normalized]
		last := users[normalized-1]
		return users, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return users, nil, nil
}

func (r *repositoryImpl) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user and their device rows in one transaction.
func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserDevice{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// SweepExpired transitions every active user whose expiry has passed. The
// single UPDATE keeps the sweep idempotent under concurrent readers.
func (r *repositoryImpl) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("subscription_status = ? AND subscription_expiry IS NOT NULL AND subscription_expiry < ?", enums.SubscriptionStatusActive, now).
		UpdateColumn("subscription_status", enums.SubscriptionStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ActiveUserIDs returns the ids of every currently-active subscriber,
// the fan-out audience for new-prediction notifications.
func (r *repositoryImpl) ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("subscription_status = ?", enums.SubscriptionStatusActive).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GrantFreeAccess overwrites the given free-access column for every
// ordinary user account.
func (r *repositoryImpl) GrantFreeAccess(ctx context.Context, column string, expiry time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.RoleUser).
		UpdateColumn(column, expiry)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AdmitDevice counts the user's device rows and inserts the new one only
// while still under the limit. Count and insert share one transaction so
// two concurrent logins cannot both slip past the check.
func (r *repositoryImpl) AdmitDevice(ctx context.Context, userID uuid.UUID, deviceID string, limit int) (bool, error) {
	var admitted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserDevice{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(limit) {
			return nil
		}
		device := models.UserDevice{ID: uuid.New(), UserID: userID, DeviceID: deviceID}
		if err := tx.Create(&device).Error; err != nil {
			return err
		}
		admitted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return admitted, nil
}

// RemoveLatestDevice drops the most recently created device row, freeing a
// login slot without matching a specific session.
func (r *repositoryImpl) RemoveLatestDevice(ctx context.Context, userID uuid.UUID) (bool, error) {
	var latest models.UserDevice
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&latest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	result := r.db.WithContext(ctx).Where("id = ?", latest.ID).Delete(&models.UserDevice{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CountDevices(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserDevice{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
