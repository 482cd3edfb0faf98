// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/service"
)

// Pinger is the probe target: the slice of the server adapter the
// connectivity worker needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// probeTimeout bounds a single health probe so a hanging connection is
// reported as offline instead of stalling the worker.
const probeTimeout = 5 * time.Second

// ConnectivityWorker periodically probes the server's health endpoint and
// feeds the result into the sync session. Going online again does not restart
// failed work by itself; the worker requests a debounced sync on that
// transition so queued local changes leave promptly.
type ConnectivityWorker struct {
	pinger   Pinger
	session  service.SyncSession
	interval time.Duration
	log      *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConnectivityWorker(pinger Pinger, session service.SyncSession, interval time.Duration, log *logger.Logger) *ConnectivityWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ConnectivityWorker{
		pinger:   pinger,
		session:  session,
		interval: interval,
		log:      log,
	}
}

// Run implements [Worker]. It probes once immediately, then on every tick,
// until Stop is called.
func (w *ConnectivityWorker) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// The session starts optimistic; the first probe corrects it.
		online := true
		online = w.probe(ctx, online)

		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				online = w.probe(ctx, online)
			}
		}
	}()
}

// Stop terminates the probe loop and waits for it to exit.
func (w *ConnectivityWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *ConnectivityWorker) probe(ctx context.Context, wasOnline bool) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := w.pinger.Ping(probeCtx)
	online := err == nil

	w.session.SetOnline(online)

	if online && !wasOnline {
		w.log.Info().Msg("server reachable again, requesting sync")
		go func() {
			_ = w.session.TriggerSync(context.Background())
		}()
	}
	if !online && wasOnline {
		w.log.Warn().Err(err).Msg("server unreachable, session switched offline")
	}

	return online
}
