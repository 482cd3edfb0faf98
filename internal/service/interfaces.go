// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service contains the business logic of go-wish-keeper: the
// client-side sync engine (push/pull cycles, session state machine, debounced
// triggering, local wishlist operations) and the server-side authorities for
// authentication and document sync.
package service

import (
	"context"

	"github.com/MKhiriev/go-wish-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/servicemock/service_mock.go -package=servicemock

// AuthService is the server-side authentication authority: account creation,
// credential verification, and the token-pair lifecycle.
type AuthService interface {
	// RegisterUser creates an account and returns the initial token pair.
	// Returns ErrUserAlreadyExists when the principal is taken.
	RegisterUser(ctx context.Context, user models.User) (models.TokenPair, error)

	// Login verifies credentials and returns a fresh token pair. Returns
	// ErrWrongCredentials on any mismatch.
	Login(ctx context.Context, user models.User) (models.TokenPair, error)

	// Refresh exchanges a valid refresh token for a new pair. Returns
	// ErrInvalidToken when the refresh token is expired, malformed, or names
	// a principal that no longer exists.
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// ParseToken validates an access token and returns it with the principal
	// extracted. Used by the HTTP auth middleware.
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SyncAuthorityService is the server-side half of the sync protocol. It owns
// the trust boundary: access arrays stored on the server decide visibility,
// and client-supplied access arrays are never trusted blindly.
type SyncAuthorityService interface {
	// Pull returns every live document of collection t visible to principal.
	Pull(ctx context.Context, principal string, t models.DocType) ([]models.Document, error)

	// Push applies a batch of client documents of collection t. Documents
	// the server refuses are reported as conflicts; the rest are persisted.
	Push(ctx context.Context, principal string, t models.DocType, docs []models.Document) ([]models.PushConflict, error)
}
