// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-wish-keeper/internal/adapter"
	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/service"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/internal/workers"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// App wires the client layers together. The store and the adapter exist from
// construction; the session, the wishlist service and the background workers
// are started once a principal is known, on the first successful Register or
// Login.
type App struct {
	cfg *config.ClientConfig
	log *logger.Logger

	store   store.DocumentStore
	adapter adapter.ServerAdapter
	queries *store.LiveQuery

	mu       sync.Mutex
	session  service.SyncSession
	wishlist service.WishlistService
	syncJob  service.ClientSyncJob
	probe    *workers.ConnectivityWorker
}

// NewApp opens the local document store and constructs the server adapter.
// No network call is made; an unreachable server surfaces later through the
// connectivity worker and failed cycles.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	st, err := store.NewLocalDocumentStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open local document store: %w", err)
	}

	srv := adapter.NewHTTPServerAdapter(adapter.HTTPClientConfig{
		BaseURL: cfg.Adapter.BaseURL,
		Timeout: cfg.Adapter.RequestTimeout,
	})

	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		adapter: srv,
		queries: store.NewLiveQuery(st, log),
	}, nil
}

// Register implements Client.
func (a *App) Register(ctx context.Context, user models.User) error {
	if _, err := a.adapter.Register(ctx, user); err != nil {
		return fmt.Errorf("register %q: %w", user.Principal, err)
	}
	return a.start(ctx, user.Principal)
}

// Login implements Client.
func (a *App) Login(ctx context.Context, user models.User) error {
	if _, err := a.adapter.Login(ctx, user); err != nil {
		return fmt.Errorf("login %q: %w", user.Principal, err)
	}
	return a.start(ctx, user.Principal)
}

// start builds the per-principal runtime: session, wishlist service,
// periodic sync job and connectivity probe. The probe flips the session
// online as soon as the first ping answers, which in turn triggers the
// initial sync cycle.
func (a *App) start(ctx context.Context, principal string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return ErrAlreadyAuthenticated
	}

	a.session = service.NewSyncSession(a.store, a.adapter, service.SessionConfig{
		Principal:      principal,
		DebounceWindow: a.cfg.Sync.DebounceWindow,
	}, a.log)
	a.session.OnError(func(err error) {
		a.log.Error().Err(err).Msg("sync cycle failed")
	})

	a.wishlist = service.NewWishlistService(a.store, a.session, principal, a.log)

	a.syncJob = service.NewClientSyncJob(a.session)
	a.syncJob.Start(ctx, a.cfg.Sync.Interval)

	a.probe = workers.NewConnectivityWorker(a.adapter, a.session, a.cfg.Sync.Interval, a.log)
	workers.NewWorkers(a.probe).Run()

	a.log.Info().Str("principal", principal).Msg("client runtime started")
	return nil
}

// Wishlist implements Client.
func (a *App) Wishlist() (service.WishlistService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.wishlist == nil {
		return nil, ErrNotAuthenticated
	}
	return a.wishlist, nil
}

// Session implements Client.
func (a *App) Session() (service.SyncSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, ErrNotAuthenticated
	}
	return a.session, nil
}

// Queries implements Client.
func (a *App) Queries() *store.LiveQuery {
	return a.queries
}

// Close implements Client. Safe to call regardless of authentication state
// and safe to call twice; the store is closed last so an in-flight cycle is
// cancelled before its backing database goes away.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.probe != nil {
		a.probe.Stop()
		a.probe = nil
	}
	if a.syncJob != nil {
		a.syncJob.Stop()
		a.syncJob = nil
	}
	if a.session != nil {
		a.session.Stop()
		a.session = nil
	}
	a.wishlist = nil

	if a.store == nil {
		return nil
	}
	st := a.store
	a.store = nil
	if err := st.Close(); err != nil {
		return fmt.Errorf("close local document store: %w", err)
	}
	return nil
}
