// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/adapter"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/internal/utils"
)

// tokenLeeway is how close to expiry an access token may be before a cycle
// renews it proactively instead of burning a round trip on a certain 401.
const tokenLeeway = 30 * time.Second

// SessionConfig carries the settings of one sync session.
type SessionConfig struct {
	// Principal is the authenticated identity the session syncs for.
	Principal string

	// DebounceWindow is the trigger coalescing window. Zero means one
	// second.
	DebounceWindow time.Duration
}

// syncSession implements [SyncSession]. All mutable state lives on the
// instance; two sessions never interact.
type syncSession struct {
	engine   *syncEngine
	tokens   adapter.TokenSource
	debounce *debouncer
	log      *logger.Logger

	// ctx bounds the session lifetime; every cycle derives from it so Stop
	// aborts in-flight network requests.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	status   SyncStatus
	online   bool
	inflight *outcome
	onError  func(error)
	stopped  bool
}

// NewSyncSession wires a session over the local store and server adapter.
// The session starts online, idle, and with no error callback installed.
func NewSyncSession(st store.DocumentStore, srv adapter.ServerAdapter, cfg SessionConfig, log *logger.Logger) SyncSession {
	s := &syncSession{
		engine: newSyncEngine(st, srv, cfg.Principal, log),
		tokens: srv,
		log:    log,
		status: StatusIdle,
		online: true,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.debounce = newDebouncer(cfg.DebounceWindow, func() error {
		err := s.SyncNow(s.ctx)
		// The wait inside SyncNow races the cycle's own resolution against
		// s.ctx; when Stop cancels the session the ctx branch can win and
		// surface raw context.Canceled. Debounced waiters always observe
		// ErrSessionStopped instead.
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			return ErrSessionStopped
		}
		return err
	})

	return s
}

func (s *syncSession) SyncNow(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	// Mutual exclusion: a trigger during syncing never starts a second
	// cycle; it waits for the in-flight one and shares its outcome.
	if s.inflight != nil {
		o := s.inflight
		s.mu.Unlock()
		return o.wait(ctx)
	}
	if !s.online {
		s.status = StatusOffline
		s.mu.Unlock()
		return ErrOffline
	}

	o := newOutcome()
	s.inflight = o
	s.status = StatusSyncing
	cycleCtx, cancelCycle := context.WithCancel(s.ctx)
	s.mu.Unlock()

	go func() {
		defer cancelCycle()
		s.finishCycle(o, s.runCycle(cycleCtx))
	}()

	return o.wait(ctx)
}

// runCycle renews the access token when it is unusable, then delegates to the
// engine. A failed renewal means the refresh token is dead too and the cycle
// ends with AuthExpired before a single sync request is sent.
func (s *syncSession) runCycle(ctx context.Context) error {
	if !utils.TokenUsable(s.tokens.Token(), tokenLeeway) {
		if err := s.tokens.Refresh(ctx); err != nil {
			return err
		}
	}

	return s.engine.runCycle(ctx)
}

// finishCycle applies the state machine transition for a completed cycle and
// fans its outcome out. Cancellation is discarded silently: waiters resolve,
// but the onError funnel stays quiet and the status does not move to error.
func (s *syncSession) finishCycle(o *outcome, err error) {
	cancelled := err != nil && (errors.Is(err, context.Canceled) || s.ctx.Err() != nil)

	s.mu.Lock()
	s.inflight = nil

	var report func(error)
	resolved := err
	switch {
	case err == nil:
		s.status = s.restingStatus()
	case cancelled:
		s.status = s.restingStatus()
		if s.stopped {
			resolved = ErrSessionStopped
		} else {
			resolved = nil
		}
	default:
		if s.online {
			s.status = StatusError
		} else {
			s.status = StatusOffline
		}
		report = s.onError
	}
	s.mu.Unlock()

	o.resolve(resolved)
	if report != nil {
		s.log.Err(err).Str("func", "syncSession.finishCycle").Msg("sync cycle failed")
		report(err)
	}
}

// restingStatus is the state a non-failing session settles into. Callers must
// hold s.mu.
func (s *syncSession) restingStatus() SyncStatus {
	if !s.online {
		return StatusOffline
	}
	return StatusIdle
}

func (s *syncSession) TriggerSync(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	if !s.online {
		s.status = StatusOffline
		s.mu.Unlock()
		return ErrOffline
	}
	s.mu.Unlock()

	return s.debounce.trigger().wait(ctx)
}

func (s *syncSession) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *syncSession) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.online = online
	if !online {
		s.status = StatusOffline
		return
	}
	// Reconnect settles to idle; it deliberately does not trigger a cycle,
	// the trigger path is expected to be re-invoked.
	if s.status == StatusOffline {
		s.status = StatusIdle
	}
}

func (s *syncSession) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

func (s *syncSession) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	// The pending debounce timer is not covered by the session context and
	// is cancelled explicitly.
	s.debounce.stop()
	s.cancel()
}
