// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/mock"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/internal/utils"
	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testAppConfig() config.App {
	return config.App{
		TokenSignKey:         "test-sign-key",
		TokenIssuer:          "go-wish-keeper",
		PasswordHashKey:      "test-hash-key",
		TokenDuration:        15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	}
}

func newTestAuthService(t *testing.T, ctrl *gomock.Controller) (AuthService, *mock.MockUserRepository) {
	t.Helper()

	users := mock.NewMockUserRepository(ctrl)
	svc := NewAuthService(users, testAppConfig(), logger.Nop())

	return svc, users
}

// ── Registration ─────────────────────────────────────────────────────────────

func TestRegisterUser_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()

	users.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u models.User) error {
		assert.Equal(t, "alice", u.Principal)
		// Plaintext never reaches the repository.
		assert.NotEqual(t, "secret", u.Password)
		assert.NotEmpty(t, u.Password)
		return nil
	})

	pair, err := svc.RegisterUser(ctx, models.User{Principal: "alice", Name: "Alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRegisterUser_DuplicatePrincipal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()

	users.EXPECT().CreateUser(ctx, gomock.Any()).Return(store.ErrDuplicate)

	_, err := svc.RegisterUser(ctx, models.User{Principal: "alice", Password: "secret"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterUser_EmptyCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestAuthService(t, ctrl)

	_, err := svc.RegisterUser(context.Background(), models.User{Principal: "alice"})
	require.ErrorIs(t, err, ErrWrongCredentials)

	_, err = svc.RegisterUser(context.Background(), models.User{Password: "secret"})
	require.ErrorIs(t, err, ErrWrongCredentials)
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		Principal: "alice",
		Password:  svc.(*authService).hashPassword("secret"),
	}
	users.EXPECT().FindUserByPrincipal(ctx, "alice").Return(stored, nil)

	pair, err := svc.Login(ctx, models.User{Principal: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		Principal: "alice",
		Password:  svc.(*authService).hashPassword("secret"),
	}
	users.EXPECT().FindUserByPrincipal(ctx, "alice").Return(stored, nil)

	_, err := svc.Login(ctx, models.User{Principal: "alice", Password: "guess"})
	require.ErrorIs(t, err, ErrWrongCredentials)
}

func TestLogin_UnknownPrincipal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()

	users.EXPECT().FindUserByPrincipal(ctx, "ghost").Return(models.User{}, store.ErrNotFound)

	// Unknown principal and wrong password are indistinguishable.
	_, err := svc.Login(ctx, models.User{Principal: "ghost", Password: "secret"})
	require.ErrorIs(t, err, ErrWrongCredentials)
}

// ── Token lifecycle ──────────────────────────────────────────────────────────

func TestRefresh_IssuesNewPair(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()
	cfg := testAppConfig()

	refresh, err := utils.GenerateJWTToken(cfg.TokenIssuer, "alice", cfg.RefreshTokenDuration, cfg.TokenSignKey)
	require.NoError(t, err)

	users.EXPECT().FindUserByPrincipal(ctx, "alice").Return(models.User{Principal: "alice"}, nil)

	pair, err := svc.Refresh(ctx, refresh.SignedString)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRefresh_RejectsForeignSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestAuthService(t, ctrl)

	forged, err := utils.GenerateJWTToken("go-wish-keeper", "alice", time.Hour, "some-other-key")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), forged.SignedString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_RejectsRemovedAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()
	cfg := testAppConfig()

	refresh, err := utils.GenerateJWTToken(cfg.TokenIssuer, "alice", cfg.RefreshTokenDuration, cfg.TokenSignKey)
	require.NoError(t, err)

	users.EXPECT().FindUserByPrincipal(ctx, "alice").Return(models.User{}, store.ErrNotFound)

	_, err = svc.Refresh(ctx, refresh.SignedString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users := newTestAuthService(t, ctrl)
	ctx := context.Background()

	users.EXPECT().CreateUser(ctx, gomock.Any()).Return(nil)

	pair, err := svc.RegisterUser(ctx, models.User{Principal: "alice", Password: "secret"})
	require.NoError(t, err)

	token, err := svc.ParseToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", token.Principal)
}

func TestParseToken_Garbage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestAuthService(t, ctrl)

	_, err := svc.ParseToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
