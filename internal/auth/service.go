package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/youscore/youscore-backend/internal/users"
	"github.com/youscore/youscore-backend/pkg/auth"
	"github.com/youscore/youscore-backend/pkg/auth/session"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/security"
)

// SessionManager is the slice of the session layer the auth flows use.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// TokenPair is the issued access/refresh credential set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service orchestrates account registration and session lifecycle.
type Service interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password, deviceID string) (*TokenPair, *models.User, error)
	Logout(ctx context.Context, userID uuid.UUID, accessID string) error
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	EnsureAdmin(ctx context.Context, admin config.AdminConfig) error
}

type service struct {
	users    users.Service
	sessions SessionManager
	jwt      config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service dependencies.
func NewService(userSvc users.Service, sessions SessionManager, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if userSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users service required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		users:    userSvc,
		sessions: sessions,
		jwt:      jwtCfg,
		password: passwordCfg,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if len(password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return s.users.Create(ctx, users.CreateParams{
		Email:        email,
		PasswordHash: hash,
		Role:         enums.RoleUser,
	})
}

// Login admits the device before minting tokens so a rejected device never
// receives a credential pair.
func (s *service) Login(ctx context.Context, email, password, deviceID string) (*TokenPair, *models.User, error) {
	if email == "" || password == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}
	if deviceID == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, nil, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.users.RecordDeviceLogin(ctx, user.ID, deviceID); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *service) Logout(ctx context.Context, userID uuid.UUID, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return s.users.RemoveLatestDevice(ctx, userID)
}

// Refresh accepts the expired access token alongside the refresh token;
// the rotated pair keeps the original user identity and role.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	signed, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: newRefresh}, nil
}

// EnsureAdmin creates the configured admin account on first boot. With
// ForceSync the stored credentials are overwritten to match the config.
func (s *service) EnsureAdmin(ctx context.Context, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin email and password required")
	}

	existing, err := s.users.GetByEmail(ctx, admin.Email)
	if err != nil {
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
			return err
		}
		hash, err := security.HashPassword(admin.Password, s.password)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
		}
		created, err := s.users.Create(ctx, users.CreateParams{
			Email:        admin.Email,
			PasswordHash: hash,
			Role:         enums.RoleAdmin,
		})
		if err != nil {
			return err
		}
		s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "admin account created")
		return nil
	}

	role := enums.RoleAdmin
	plan := enums.SubscriptionPlanNone
	status := enums.SubscriptionStatusInactive

	if !admin.ForceSync {
		// an account holding the admin email is always promoted, even
		// without force-sync; only the password is left alone
		if existing.Role == enums.RoleAdmin {
			return nil
		}
		if _, err := s.users.Update(ctx, existing.ID, users.UpdateParams{
			Role:               &role,
			SubscriptionPlan:   &plan,
			SubscriptionStatus: &status,
		}); err != nil {
			return err
		}
		s.logg.Info(s.logg.WithUserID(ctx, existing.ID.String()), "admin account promoted")
		return nil
	}

	if err := s.users.ChangePassword(ctx, existing.ID, "", admin.Password); err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, existing.ID, users.UpdateParams{
		Role:               &role,
		SubscriptionPlan:   &plan,
		SubscriptionStatus: &status,
	}); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithUserID(ctx, existing.ID.String()), "admin account synced")
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessID := session.NewAccessID()
	signed, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: refresh}, nil
}
