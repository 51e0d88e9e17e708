package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
)

// Service manages the per-user notification feed.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, message string) error
	List(ctx context.Context, user *models.User) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	access config.AccessConfig
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the notifications service dependencies.
func NewService(repo Repository, access config.AccessConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:   repo,
		access: access,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, message string) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid notification type %q", kind))
	}
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}
	row := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    kind,
		Message: message,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification")
	}
	return nil
}

// List returns the user's feed newest first. Before reading it checks the
// subscription expiry and appends a warning when the expiry falls inside
// the warning window and no warning was written within the same window.
func (s *service) List(ctx context.Context, user *models.User) ([]models.Notification, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}
	if err := s.maybeWarnExpiring(ctx, user); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	updated, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) maybeWarnExpiring(ctx context.Context, user *models.User) error {
	if user.SubscriptionStatus != enums.SubscriptionStatusActive || user.SubscriptionExpiry == nil {
		return nil
	}
	now := s.now()
	expiry := *user.SubscriptionExpiry
	if !expiry.After(now) || expiry.Sub(now) > s.access.ExpiryWarning {
		return nil
	}

	since := now.Add(-s.access.ExpiryWarning)
	exists, err := s.repo.HasRecentOfType(ctx, user.ID, enums.NotificationTypeSubscriptionExpiring, since)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check recent expiry warnings")
	}
	if exists {
		return nil
	}

	message := fmt.Sprintf("Your subscription expires on %s.", expiry.UTC().Format("2006-01-02"))
	return s.Notify(ctx, user.ID, enums.NotificationTypeSubscriptionExpiring, message)
}
