package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/internal/utils"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// authService is the concrete implementation of AuthService. It handles
// account registration, credential verification, and the JWT token-pair
// lifecycle, using a UserRepository for persistence and HMAC-SHA256 for
// password hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up
	// accounts.
	userRepository store.UserRepository

	// hashKey is the HMAC secret used when hashing passwords before storage
	// or comparison. Must match the value used at registration time.
	hashKey string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	// tokenDuration controls how long an access token remains valid.
	tokenDuration time.Duration

	// refreshDuration controls how long a refresh token remains valid.
	refreshDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given UserRepository
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(userRepository store.UserRepository, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:  userRepository,
		hashKey:         cfg.PasswordHashKey,
		tokenSignKey:    cfg.TokenSignKey,
		tokenIssuer:     cfg.TokenIssuer,
		tokenDuration:   cfg.TokenDuration,
		refreshDuration: cfg.RefreshTokenDuration,
		logger:          logger,
	}
}

// RegisterUser creates an account and issues its first token pair.
//
// Returns:
//   - ErrWrongCredentials if Principal or Password is empty.
//   - ErrUserAlreadyExists if the principal is taken.
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if user.Principal == "" || user.Password == "" {
		log.Error().Str("principal", user.Principal).Msg("invalid registration data provided")
		return models.TokenPair{}, ErrWrongCredentials
	}

	user.Password = a.hashPassword(user.Password)
	if err := a.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.TokenPair{}, ErrUserAlreadyExists
		}
		log.Err(err).Str("principal", user.Principal).Msg("user creation ended with error")
		return models.TokenPair{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return a.createTokenPair(user.Principal)
}

// Login authenticates an existing account and issues a fresh token pair.
// An unknown principal and a wrong password both map to ErrWrongCredentials.
func (a *authService) Login(ctx context.Context, user models.User) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if user.Principal == "" || user.Password == "" {
		return models.TokenPair{}, ErrWrongCredentials
	}

	found, err := a.userRepository.FindUserByPrincipal(ctx, user.Principal)
	if errors.Is(err, store.ErrNotFound) {
		return models.TokenPair{}, ErrWrongCredentials
	}
	if err != nil {
		log.Err(err).Str("principal", user.Principal).Msg("user lookup ended with error")
		return models.TokenPair{}, fmt.Errorf("user lookup ended with error: %w", err)
	}

	if !hmac.Equal([]byte(found.Password), []byte(a.hashPassword(user.Password))) {
		return models.TokenPair{}, ErrWrongCredentials
	}

	return a.createTokenPair(found.Principal)
}

// Refresh exchanges a valid refresh token for a new pair. The old refresh
// token is not revoked; both remain valid until expiry.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	token, err := utils.ValidateAndParseJWTToken(refreshToken, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	// The account may have been removed since the token was issued.
	if _, err = a.userRepository.FindUserByPrincipal(ctx, token.Principal); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.TokenPair{}, ErrInvalidToken
		}
		log.Err(err).Str("principal", token.Principal).Msg("user lookup ended with error")
		return models.TokenPair{}, fmt.Errorf("user lookup ended with error: %w", err)
	}

	return a.createTokenPair(token.Principal)
}

// ParseToken validates an access token and returns it with the principal
// populated. Used by the HTTP auth middleware.
func (a *authService) ParseToken(_ context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return token, nil
}

func (a *authService) createTokenPair(principal string) (models.TokenPair, error) {
	access, err := utils.GenerateJWTToken(a.tokenIssuer, principal, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := utils.GenerateJWTToken(a.tokenIssuer, principal, a.refreshDuration, a.tokenSignKey)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:  access.SignedString,
		RefreshToken: refresh.SignedString,
	}, nil
}

func (a *authService) hashPassword(password string) string {
	mac := hmac.New(sha256.New, []byte(a.hashKey))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}
