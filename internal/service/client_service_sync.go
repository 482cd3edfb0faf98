// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-wish-keeper/internal/adapter"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
)

// syncEngine executes one push-then-pull cycle against the server. It is not
// safe for concurrent cycles; syncSession guarantees mutual exclusion.
type syncEngine struct {
	store     store.DocumentStore
	adapter   adapter.ServerAdapter
	principal string
	log       *logger.Logger

	// cursor is the change-feed sequence up to which every local change has
	// been offered to the server without a failed push. It bounds the next
	// cycle's ChangesSince read to true deltas.
	cursor int64
}

func newSyncEngine(st store.DocumentStore, srv adapter.ServerAdapter, principal string, log *logger.Logger) *syncEngine {
	return &syncEngine{
		store:     st,
		adapter:   srv,
		principal: principal,
		log:       log,
	}
}

// cycleState carries the bookkeeping of one cycle from the push stage into
// the pull stage: which ids were offered to the server per collection, and
// which of them the server rejected without an authoritative document.
type cycleState struct {
	// pushed holds, per collection, the ids included in this cycle's push
	// batches.
	pushed map[string]struct{}

	// failed holds ids the server rejected with a bare error. They are
	// preserved untouched and shielded from deletion-by-reconciliation for
	// the rest of the cycle.
	failed map[string]struct{}

	// snapshotSeq is the highest change-feed sequence included in this
	// cycle's push snapshot.
	snapshotSeq int64
}

func newCycleState() *cycleState {
	return &cycleState{
		pushed: make(map[string]struct{}),
		failed: make(map[string]struct{}),
	}
}

// runCycle performs push strictly before pull. A push failure aborts the
// cycle before any pull; a pull failure aborts before any reconciliation.
func (s *syncEngine) runCycle(ctx context.Context) error {
	state, err := s.pushStage(ctx)
	if err != nil {
		return fmt.Errorf("push stage: %w", err)
	}

	if err = s.pullStage(ctx, state); err != nil {
		return fmt.Errorf("pull stage: %w", err)
	}

	// The cursor only advances past changes the server has acknowledged;
	// failed pushes are offered again next cycle.
	if len(state.failed) == 0 && state.snapshotSeq > s.cursor {
		s.cursor = state.snapshotSeq
	}

	return nil
}
