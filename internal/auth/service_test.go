package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/giftly/giftly-backend/pkg/auth"
	"github.com/giftly/giftly-backend/pkg/auth/session"
	"github.com/giftly/giftly-backend/pkg/config"
	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/security"
)

func TestServiceLoginBuyer(t *testing.T) {
	password := "buyer-secret"
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Asha Buyer",
		Email:        "asha@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, sessions, err := buildTestService(user, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role claim, got %s", claims.Role)
	}
	if claims.SellerID != nil {
		t.Fatalf("expected no seller claim for buyer, got %s", claims.SellerID)
	}
	if resp.RefreshToken != sessions.refreshToken {
		t.Fatalf("expected refresh token from session manager")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user in response")
	}
}

func TestServiceLoginSellerCarriesSellerClaim(t *testing.T) {
	password := "seller-secret"
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Ravi Seller",
		Email:        "ravi@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleSeller,
		IsActive:     true,
	}
	seller := &models.Seller{
		ID:        uuid.New(),
		UserID:    user.ID,
		StoreName: "Ravi Crafts",
		Status:    enums.SellerStatusApproved,
	}
	cfg := testJWTConfig()

	svc, _, err := buildTestService(user, seller, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.SellerID == nil || *claims.SellerID != seller.ID {
		t.Fatalf("expected seller claim %s, got %v", seller.ID, claims.SellerID)
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: mustHashPassword(t, "correct-password"),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}

	svc, _, err := buildTestService(user, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	assertUnauthorized(t, err)
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "inactive-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "frozen@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     false,
	}

	svc, _, err := buildTestService(user, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	assertUnauthorized(t, err)
}

func TestServiceRefreshRotatesSessionAndRereadsRole(t *testing.T) {
	password := "refresh-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "promoted@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, sessions, err := buildTestService(user, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Role changes between login and refresh must surface in the new claims.
	user.Role = enums.UserRoleSeller

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.Role != enums.UserRoleSeller {
		t.Fatalf("expected refreshed token to carry seller role, got %s", claims.Role)
	}
	if claims.ID != sessions.rotatedAccessID {
		t.Fatalf("expected jti %q, got %q", sessions.rotatedAccessID, claims.ID)
	}
	if pair.RefreshToken == resp.RefreshToken {
		t.Fatalf("expected rotated refresh token to differ")
	}
}

func TestServiceRefreshRejectsMismatchedRefreshToken(t *testing.T) {
	password := "refresh-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "rotate@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}

	svc, _, err := buildTestService(user, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: "not-the-stored-token",
	})
	assertUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{},
		SellerRepo:     stubSellerLookup{},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revokedAccessID != "access-id" {
		t.Fatalf("expected session revoke for access-id, got %q", sessions.revokedAccessID)
	}

	err = svc.Logout(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank access id, got %v", err)
	}
}

func TestServiceMeNotFound(t *testing.T) {
	svc, _, err := buildTestService(nil, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Me(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "giftly",
		ExpirationMinutes: 30,
	}
}

func buildTestService(user *models.User, seller *models.Seller, jwtCfg config.JWTConfig) (Service, *stubSessionManager, error) {
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SellerRepo:     stubSellerLookup{seller: seller},
		SessionManager: sessions,
		JWTConfig:      jwtCfg,
	})
	return svc, sessions, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSellerLookup struct {
	seller *models.Seller
}

func (s stubSellerLookup) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	if s.seller == nil || s.seller.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.seller, nil
}

type stubSessionManager struct {
	refreshToken    string
	rotatedAccessID string
	revokedAccessID string
	stored          map[string]string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{
		refreshToken: "refresh-token",
		stored:       map[string]string{},
	}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.stored[accessID] = s.refreshToken
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	current, ok := s.stored[oldAccessID]
	if !ok || current != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.stored, oldAccessID)
	s.rotatedAccessID = "rotated-" + oldAccessID
	rotated := "rotated-" + provided
	s.stored[s.rotatedAccessID] = rotated
	return s.rotatedAccessID, rotated, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revokedAccessID = accessID
	delete(s.stored, accessID)
	return nil
}
