package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWTToken creates a signed HMAC-SHA256 JWT token for a principal.
//
// The token includes the following standard claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the principal identifier
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//
// All parameters are required. Returns an error if any of them are empty or
// zero.
func GenerateJWTToken(issuer, principal string, tokenDuration time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || principal == "" || tokenDuration == 0 || signKey == "" {
		return models.Token{}, errors.New("invalid params for generating JWT token")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   principal,
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.Token{
		Token:            token,
		RegisteredClaims: *claims,
		SignedString:     tokenString,
		Principal:        principal,
	}, nil
}

// ValidateAndParseJWTToken validates the given JWT token string and extracts
// its claims.
//
// Validation includes:
//   - signature verification using the provided sign key;
//   - issuer (iss) claim check against tokenIssuer;
//   - expiration (exp) claim check;
//   - subject (sub) claim presence.
//
// Returns jwt.ErrTokenExpired (wrapped) when the token has expired so callers
// can distinguish expiry from other failures with errors.Is.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(tokenSignKey), nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Token{}, fmt.Errorf("error parsing JWT token: %w", err)
	}

	parsed := models.Token{
		Token:            token,
		RegisteredClaims: *claims,
		SignedString:     tokenString,
	}

	principal, err := parsed.GetPrincipal()
	if err != nil {
		return models.Token{}, err
	}
	parsed.Principal = principal

	return parsed, nil
}

// TokenUsable reports whether tokenString is a structurally valid JWT whose
// expiry lies at least leeway in the future. The signature is NOT verified:
// this is the client-side "do we have a token worth sending" check, not an
// authorization decision.
func TokenUsable(tokenString string, leeway time.Duration) bool {
	if tokenString == "" {
		return false
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &jwt.RegisteredClaims{})
	if err != nil {
		return false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		// Tokens without an exp claim are treated as non-expiring.
		return err == nil
	}

	return time.Now().Add(leeway).Before(exp.Time)
}
