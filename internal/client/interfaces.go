// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/go-wish-keeper/internal/service"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// Client is the assembled client runtime. Register or Login must succeed
// before Wishlist and Session become available; Close tears the runtime down
// in reverse construction order.
type Client interface {
	// Register creates a new account on the server and starts the sync
	// runtime for it.
	Register(ctx context.Context, user models.User) error

	// Login authenticates an existing account and starts the sync runtime
	// for it.
	Login(ctx context.Context, user models.User) error

	// Wishlist returns the local mutation surface. Returns
	// ErrNotAuthenticated before a successful Register or Login.
	Wishlist() (service.WishlistService, error)

	// Session returns the sync session. Returns ErrNotAuthenticated before
	// a successful Register or Login.
	Session() (service.SyncSession, error)

	// Queries returns the live query layer over the local store. Available
	// from construction; results reflect local state regardless of
	// connectivity.
	Queries() *store.LiveQuery

	// Close stops workers, the session and the store.
	Close() error
}
