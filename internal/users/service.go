package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/internal/week"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db"
	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/pagination"
	"github.com/youscore/youscore-backend/pkg/security"
)

// Notifier decouples the users service from the notification store.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, message string) error
}

// Service drives the subscription lifecycle and device admission.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RequestSubscription(ctx context.Context, id uuid.UUID, plan enums.SubscriptionPlan, proofRef *string) (*models.User, error)
	ApproveSubscription(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResetSubscription(ctx context.Context, id uuid.UUID) (*models.User, error)
	RecordDeviceLogin(ctx context.Context, id uuid.UUID, deviceID string) error
	RemoveLatestDevice(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
	ChangeEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error)
	GrantFreeAccess(ctx context.Context, segment week.Segment, expiry time.Time) (int64, error)
}

// UserList is one page of accounts plus the cursor for the next page.
type UserList struct {
	Users      []models.User `json:"users"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CreateParams holds the data needed to persist a new account.
type CreateParams struct {
	Email        string
	PasswordHash string
	Role         enums.Role
}

// UpdateParams is the admin-direct patch surface. Nil fields are left as-is.
type UpdateParams struct {
	Role               *enums.Role
	SubscriptionPlan   *enums.SubscriptionPlan
	SubscriptionStatus *enums.SubscriptionStatus
	SubscriptionStart  *time.Time
	SubscriptionExpiry *time.Time
	FreeAccessMidWeek  *time.Time
	FreeAccessWeekend  *time.Time
}

type service struct {
	repo     Repository
	access   config.AccessConfig
	password config.PasswordConfig
	notifier Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the users service dependencies. The notifier is optional;
// when absent, approval simply skips the side effect.
func NewService(repo Repository, access config.AccessConfig, password config.PasswordConfig, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if access.DeviceLimit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "device limit must be positive")
	}
	return &service{
		repo:     repo,
		access:   access,
		password: password,
		notifier: notifier,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.User, error) {
	if params.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if params.PasswordHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password hash required")
	}
	role := params.Role
	if role == "" {
		role = enums.RoleUser
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	user := &models.User{
		ID:                 uuid.New(),
		Email:              params.Email,
		PasswordHash:       params.PasswordHash,
		Role:               role,
		SubscriptionPlan:   enums.SubscriptionPlanNone,
		SubscriptionStatus: enums.SubscriptionStatusInactive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

// Get sweeps expired subscriptions before loading so the caller never
// observes a stale active status.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if _, err := s.repo.SweepExpired(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expiry sweep")
	}
	return s.load(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if _, err := s.repo.SweepExpired(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expiry sweep")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user by email")
	}
	return user, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	cursor, err := pagination.Decode(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	if _, err := s.repo.SweepExpired(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expiry sweep")
	}
	users, next, err := s.repo.List(ctx, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	list := &UserList{Users: users}
	if next != nil {
		list.NextCursor = next.Token()
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Role != nil {
		if !params.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		user.Role = *params.Role
	}
	if params.SubscriptionPlan != nil {
		if !params.SubscriptionPlan.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription plan")
		}
		user.SubscriptionPlan = *params.SubscriptionPlan
	}
	if params.SubscriptionStatus != nil {
		if !params.SubscriptionStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription status")
		}
		user.SubscriptionStatus = *params.SubscriptionStatus
	}
	if params.SubscriptionStart != nil {
		user.SubscriptionStart = params.SubscriptionStart
	}
	if params.SubscriptionExpiry != nil {
		user.SubscriptionExpiry = params.SubscriptionExpiry
	}
	if params.FreeAccessMidWeek != nil {
		user.FreeAccessMidWeek = params.FreeAccessMidWeek
	}
	if params.FreeAccessWeekend != nil {
		user.FreeAccessWeekend = params.FreeAccessWeekend
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *service) RequestSubscription(ctx context.Context, id uuid.UUID, plan enums.SubscriptionPlan, proofRef *string) (*models.User, error) {
	if plan == enums.SubscriptionPlanNone || !plan.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a concrete subscription plan is required")
	}

	// sweep first so a lapsed subscription reads as expired, not active
	if _, err := s.repo.SweepExpired(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expiry sweep")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionStatus == enums.SubscriptionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription already active")
	}

	user.SubscriptionPlan = plan
	user.SubscriptionStatus = enums.SubscriptionStatusPending
	user.SubscriptionStart = nil
	user.SubscriptionExpiry = nil
	user.PaymentProofRef = proofRef

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request subscription")
	}
	return user, nil
}

// ApproveSubscription activates from any state (admin override). A plan of
// "none" defaults to weekly before dating the window.
func (s *service) ApproveSubscription(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if user.SubscriptionPlan == enums.SubscriptionPlanNone {
		user.SubscriptionPlan = enums.SubscriptionPlanWeekly
	}

	expiry := now.AddDate(0, 0, 7)
	if user.SubscriptionPlan == enums.SubscriptionPlanMonthly {
		expiry = now.AddDate(0, 1, 0)
	}

	user.SubscriptionStatus = enums.SubscriptionStatusActive
	user.SubscriptionStart = &now
	user.SubscriptionExpiry = &expiry

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve subscription")
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, user.ID, enums.NotificationTypeSubscriptionApproved, "Your subscription has been approved."); err != nil {
			notifyCtx := s.logg.WithFields(s.logg.WithUserID(ctx, user.ID.String()), map[string]any{"error": err.Error()})
			s.logg.Warn(notifyCtx, "subscription approval notification failed")
		}
	}
	return user, nil
}

func (s *service) ResetSubscription(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.SubscriptionPlan = enums.SubscriptionPlanNone
	user.SubscriptionStatus = enums.SubscriptionStatusInactive
	user.SubscriptionStart = nil
	user.SubscriptionExpiry = nil
	user.PaymentProofRef = nil

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset subscription")
	}
	return user, nil
}

func (s *service) RecordDeviceLogin(ctx context.Context, id uuid.UUID, deviceID string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if deviceID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	admitted, err := s.repo.AdmitDevice(ctx, id, deviceID, s.access.DeviceLimit)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "admit device")
	}
	if !admitted {
		return pkgerrors.New(pkgerrors.CodeConflict, "device limit exceeded")
	}
	return nil
}

func (s *service) RemoveLatestDevice(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if _, err := s.repo.RemoveLatestDevice(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove device")
	}
	return nil
}

// ChangePassword verifies the current credential when one is supplied
// (admins may omit it) and stores the new hash.
func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if next == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password required")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if current != "" {
		ok, err := security.VerifyPassword(current, user.PasswordHash)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify password")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password incorrect")
		}
	}

	hash, err := security.HashPassword(next, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hash password")
	}
	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "change password")
	}
	return nil
}

func (s *service) ChangeEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = email
	if err := s.repo.Update(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "change email")
	}
	return user, nil
}

// GrantFreeAccess overwrites the segment's free-access expiry for every
// ordinary account. Rewriting an identical grant is harmless.
func (s *service) GrantFreeAccess(ctx context.Context, segment week.Segment, expiry time.Time) (int64, error) {
	column := "free_access_mid_week"
	if segment == week.SegmentWeekend {
		column = "free_access_weekend"
	}
	granted, err := s.repo.GrantFreeAccess(ctx, column, expiry)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grant free access")
	}
	return granted, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	return user, nil
}

// CanView is the read-side access predicate: an active subscription grants
// everything, otherwise a non-expired free-access grant for the current
// segment suffices. Recomputed against the clock on every call.
func CanView(user *models.User, now time.Time) bool {
	if user == nil {
		return false
	}
	if user.SubscriptionStatus == enums.SubscriptionStatusActive &&
		user.SubscriptionExpiry != nil && user.SubscriptionExpiry.After(now) {
		return true
	}
	switch week.SegmentOf(now) {
	case week.SegmentWeekend:
		return user.FreeAccessWeekend != nil && user.FreeAccessWeekend.After(now)
	default:
		return user.FreeAccessMidWeek != nil && user.FreeAccessMidWeek.After(now)
	}
}
