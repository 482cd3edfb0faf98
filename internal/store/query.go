// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// LiveQuery turns a [DocumentStore] selector into a stream of result
// snapshots. Each subscription receives the full matching set immediately,
// then a fresh full set whenever a relevant document changes. Intermediate
// snapshots may be skipped under load; the latest one is always delivered.
type LiveQuery struct {
	store DocumentStore
	log   *logger.Logger
}

// NewLiveQuery returns a LiveQuery reading from store.
func NewLiveQuery(store DocumentStore, log *logger.Logger) *LiveQuery {
	return &LiveQuery{store: store, log: log}
}

// Subscribe runs sel against the store and emits the result set, re-running
// the query after every change that could affect it. The returned channel is
// closed when ctx is cancelled or the store shuts down. The cancel function
// releases the underlying change-feed subscription and is safe to call more
// than once.
func (q *LiveQuery) Subscribe(ctx context.Context, sel Selector) (<-chan []models.Document, func(), error) {
	initial, err := q.store.Find(ctx, sel)
	if err != nil {
		return nil, nil, err
	}

	changes, unwatch := q.store.Watch()

	// Buffer of one plus drain-before-send conflates bursts into the
	// latest snapshot without ever blocking the change feed.
	out := make(chan []models.Document, 1)
	out <- initial

	subCtx, cancel := context.WithCancel(ctx)
	go q.run(subCtx, sel, changes, out)

	stop := func() {
		cancel()
		unwatch()
	}

	return out, stop, nil
}

func (q *LiveQuery) run(ctx context.Context, sel Selector, changes <-chan Change, out chan []models.Document) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if !relevantChange(sel, ch) {
				continue
			}

			docs, err := q.store.Find(ctx, sel)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				q.log.Err(err).Str("func", "LiveQuery.run").Msg("error re-running live query")
				continue
			}

			select {
			case out <- docs:
			default:
				<-out
				out <- docs
			}
		}
	}
}

// relevantChange reports whether ch can affect the result set of sel.
// Deletions always count when the coarse filters match: a tombstoned
// document leaves a non-IncludeDeleted result set.
func relevantChange(sel Selector, ch Change) bool {
	if ch.Doc == nil {
		return true
	}
	if sel.Type != "" && ch.Doc.Type != sel.Type {
		return false
	}
	if sel.ParentID != "" && ch.Doc.ParentID != sel.ParentID {
		return false
	}
	if sel.CreatedBy != "" && ch.Doc.CreatedBy != sel.CreatedBy {
		return false
	}
	return true
}
