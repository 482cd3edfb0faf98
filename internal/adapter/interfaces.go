// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the go-wish-keeper sync server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-wish-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// TokenSource exposes the current access token and a way to renew it. The
// sync engine consults it before a cycle to renew proactively instead of
// burning a round trip on a guaranteed 401.
type TokenSource interface {
	// Token returns the bearer token currently held, or an empty string if
	// the client has never authenticated.
	Token() string

	// Refresh exchanges the stored refresh token for a new token pair.
	// Returns ErrAuthExpired (wrapped) when the refresh token itself is no
	// longer accepted and the user must log in again.
	Refresh(ctx context.Context) error
}

// ServerAdapter defines transport-agnostic communication with the sync
// server. Implementations are responsible for serialisation, authentication
// header management, the single refresh-then-retry pass on expired access
// tokens, and mapping transport-level errors to the sentinel values defined
// in this package.
type ServerAdapter interface {
	TokenSource

	// Register creates a new account and returns the initial token pair.
	// The pair is also stored for subsequent authenticated requests.
	Register(ctx context.Context, user models.User) (models.TokenPair, error)

	// Login authenticates an existing account and stores the returned token
	// pair. Returns ErrUnauthorized (wrapped) on bad credentials.
	Login(ctx context.Context, user models.User) (models.TokenPair, error)

	// Ping probes server reachability without authentication. A nil error
	// means the server answered the health endpoint.
	Ping(ctx context.Context) error

	// Pull fetches every document of collection t visible to the
	// authenticated principal. The server decides visibility; the returned
	// set is complete, not incremental.
	Pull(ctx context.Context, t models.DocType) ([]models.Document, error)

	// Push uploads locally changed documents of collection t. Documents the
	// server refuses come back as conflicts; an empty slice means everything
	// was accepted.
	Push(ctx context.Context, t models.DocType, docs []models.Document) ([]models.PushConflict, error)
}
