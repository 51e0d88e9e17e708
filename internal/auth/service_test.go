package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/youscore/youscore-backend/internal/users"
	"github.com/youscore/youscore-backend/internal/week"
	pkgauth "github.com/youscore/youscore-backend/pkg/auth"
	"github.com/youscore/youscore-backend/pkg/auth/session"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/security"
)

type fakeUsers struct {
	users.Service

	createFn             func(ctx context.Context, params users.CreateParams) (*models.User, error)
	getByEmailFn         func(ctx context.Context, email string) (*models.User, error)
	recordDeviceLoginFn  func(ctx context.Context, id uuid.UUID, deviceID string) error
	removeLatestDeviceFn func(ctx context.Context, id uuid.UUID) error
	changePasswordFn     func(ctx context.Context, id uuid.UUID, current, next string) error
	updateFn             func(ctx context.Context, id uuid.UUID, params users.UpdateParams) (*models.User, error)
}

func (f *fakeUsers) Create(ctx context.Context, params users.CreateParams) (*models.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, params)
	}
	return &models.User{ID: uuid.New(), Email: params.Email, Role: params.Role}, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (f *fakeUsers) RecordDeviceLogin(ctx context.Context, id uuid.UUID, deviceID string) error {
	if f.recordDeviceLoginFn != nil {
		return f.recordDeviceLoginFn(ctx, id, deviceID)
	}
	return nil
}

func (f *fakeUsers) RemoveLatestDevice(ctx context.Context, id uuid.UUID) error {
	if f.removeLatestDeviceFn != nil {
		return f.removeLatestDeviceFn(ctx, id)
	}
	return nil
}

func (f *fakeUsers) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if f.changePasswordFn != nil {
		return f.changePasswordFn(ctx, id, current, next)
	}
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, id uuid.UUID, params users.UpdateParams) (*models.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, params)
	}
	return nil, nil
}

func (f *fakeUsers) GrantFreeAccess(ctx context.Context, segment week.Segment, expiry time.Time) (int64, error) {
	return 0, nil
}

type fakeSessions struct {
	generated []string
	revoked   []string
	rotateFn  func(ctx context.Context, oldAccessID, provided string) (string, string, error)
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if f.rotateFn != nil {
		return f.rotateFn(ctx, oldAccessID, provided)
	}
	return "", "", session.ErrInvalidRefreshToken
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "youscore-test",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 43200,
	}
}

func newTestService(t *testing.T, userSvc users.Service, sessions SessionManager) *service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := NewService(userSvc, sessions, testJWTConfig(), testPasswordConfig(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func seededUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: hash,
		Role:         enums.RoleUser,
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	var captured users.CreateParams
	fake := &fakeUsers{
		createFn: func(ctx context.Context, params users.CreateParams) (*models.User, error) {
			captured = params
			return &models.User{ID: uuid.New(), Email: params.Email, Role: params.Role}, nil
		},
	}
	svc := newTestService(t, fake, &fakeSessions{})

	user, err := svc.Register(context.Background(), "new@example.com", "sup3rsecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if captured.Role != enums.RoleUser {
		t.Fatalf("role = %s, want user", captured.Role)
	}
	ok, err := security.VerifyPassword("sup3rsecret", captured.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify (ok=%v err=%v)", ok, err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, &fakeUsers{}, &fakeSessions{})
	_, err := svc.Register(context.Background(), "new@example.com", "short")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	user := seededUser(t, "sup3rsecret")
	var recordedDevice string
	fake := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
		recordDeviceLoginFn: func(ctx context.Context, id uuid.UUID, deviceID string) error {
			recordedDevice = deviceID
			return nil
		},
	}
	sessions := &fakeSessions{}
	svc := newTestService(t, fake, sessions)

	pair, got, err := svc.Login(context.Background(), user.Email, "sup3rsecret", "device-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatal("wrong user returned")
	}
	if recordedDevice != "device-1" {
		t.Fatalf("device = %q", recordedDevice)
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.generated))
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.RoleUser {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ID != sessions.generated[0] {
		t.Fatal("jti must match the stored session access id")
	}
	if pair.RefreshToken != "refresh-"+claims.ID {
		t.Fatalf("refresh token = %q", pair.RefreshToken)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := seededUser(t, "sup3rsecret")
	fake := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newTestService(t, fake, &fakeSessions{})

	_, _, err := svc.Login(context.Background(), user.Email, "wrong-password", "device-1")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, &fakeUsers{}, &fakeSessions{})
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "sup3rsecret", "device-1")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginPropagatesDeviceLimit(t *testing.T) {
	user := seededUser(t, "sup3rsecret")
	sessions := &fakeSessions{}
	fake := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
		recordDeviceLoginFn: func(ctx context.Context, id uuid.UUID, deviceID string) error {
			return pkgerrors.New(pkgerrors.CodeConflict, "device limit exceeded")
		},
	}
	svc := newTestService(t, fake, sessions)

	_, _, err := svc.Login(context.Background(), user.Email, "sup3rsecret", "device-3")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(sessions.generated) != 0 {
		t.Fatal("a rejected device must not receive a session")
	}
}

func TestLogoutRevokesSessionAndDevice(t *testing.T) {
	var removed uuid.UUID
	fake := &fakeUsers{
		removeLatestDeviceFn: func(ctx context.Context, id uuid.UUID) error {
			removed = id
			return nil
		},
	}
	sessions := &fakeSessions{}
	svc := newTestService(t, fake, sessions)
	userID := uuid.New()

	if err := svc.Logout(context.Background(), userID, "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("revoked = %v", sessions.revoked)
	}
	if removed != userID {
		t.Fatal("latest device was not removed")
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	expired, err := pkgauth.MintAccessToken(testJWTConfig(), now.Add(-2*time.Hour), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.RoleUser,
		JTI:    "old-access",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	sessions := &fakeSessions{
		rotateFn: func(ctx context.Context, oldAccessID, provided string) (string, string, error) {
			if oldAccessID != "old-access" || provided != "old-refresh" {
				return "", "", session.ErrInvalidRefreshToken
			}
			return "new-access", "new-refresh", nil
		},
	}
	svc := newTestService(t, &fakeUsers{}, sessions)
	svc.now = func() time.Time { return now }

	pair, err := svc.Refresh(context.Background(), expired, "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken != "new-refresh" {
		t.Fatalf("refresh token = %q", pair.RefreshToken)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID || claims.ID != "new-access" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	svc := newTestService(t, &fakeUsers{}, &fakeSessions{})
	_, err := svc.Refresh(context.Background(), "not-a-jwt", "refresh")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestEnsureAdminCreatesAccount(t *testing.T) {
	var captured users.CreateParams
	fake := &fakeUsers{
		createFn: func(ctx context.Context, params users.CreateParams) (*models.User, error) {
			captured = params
			return &models.User{ID: uuid.New(), Email: params.Email, Role: params.Role}, nil
		},
	}
	svc := newTestService(t, fake, &fakeSessions{})

	admin := config.AdminConfig{Email: "admin@example.com", Password: "admin-secret"}
	if err := svc.EnsureAdmin(context.Background(), admin); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if captured.Role != enums.RoleAdmin {
		t.Fatalf("role = %s, want admin", captured.Role)
	}
	ok, err := security.VerifyPassword("admin-secret", captured.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("admin hash does not verify (ok=%v err=%v)", ok, err)
	}
}

func TestEnsureAdminForceSync(t *testing.T) {
	existing := seededUser(t, "stale-password")
	existing.Role = enums.RoleAdmin
	var nextPassword string
	fake := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
		changePasswordFn: func(ctx context.Context, id uuid.UUID, current, next string) error {
			nextPassword = next
			return nil
		},
	}
	svc := newTestService(t, fake, &fakeSessions{})

	admin := config.AdminConfig{Email: existing.Email, Password: "fresh-password", ForceSync: true}
	if err := svc.EnsureAdmin(context.Background(), admin); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if nextPassword != "fresh-password" {
		t.Fatalf("password was not synced, got %q", nextPassword)
	}
}

func TestEnsureAdminPromotesExistingAccount(t *testing.T) {
	// the admin email always carries the admin role; without force sync the
	// password stays untouched but the role and subscription are reset
	existing := seededUser(t, "user-password")
	existing.Role = enums.RoleUser
	var captured *users.UpdateParams
	passwordChanged := false
	fake := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, params users.UpdateParams) (*models.User, error) {
			captured = &params
			return existing, nil
		},
		changePasswordFn: func(ctx context.Context, id uuid.UUID, current, next string) error {
			passwordChanged = true
			return nil
		},
	}
	svc := newTestService(t, fake, &fakeSessions{})

	admin := config.AdminConfig{Email: existing.Email, Password: "fresh-password"}
	if err := svc.EnsureAdmin(context.Background(), admin); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if captured == nil || captured.Role == nil || *captured.Role != enums.RoleAdmin {
		t.Fatalf("expected role promoted to admin, got %+v", captured)
	}
	if captured.SubscriptionPlan == nil || *captured.SubscriptionPlan != enums.SubscriptionPlanNone {
		t.Fatal("expected subscription plan reset to none")
	}
	if captured.SubscriptionStatus == nil || *captured.SubscriptionStatus != enums.SubscriptionStatusInactive {
		t.Fatal("expected subscription status reset to inactive")
	}
	if passwordChanged {
		t.Fatal("promotion must not rewrite the password without force sync")
	}
}

func TestEnsureAdminNoopWithoutForceSync(t *testing.T) {
	existing := seededUser(t, "stale-password")
	existing.Role = enums.RoleAdmin
	changed := false
	fake := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
		changePasswordFn: func(ctx context.Context, id uuid.UUID, current, next string) error {
			changed = true
			return nil
		},
	}
	svc := newTestService(t, fake, &fakeSessions{})

	admin := config.AdminConfig{Email: existing.Email, Password: "fresh-password"}
	if err := svc.EnsureAdmin(context.Background(), admin); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if changed {
		t.Fatal("existing admin must be left untouched without force sync")
	}
}
