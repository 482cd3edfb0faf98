package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// pullStage fetches every collection concurrently and reconciles only after
// all fetches succeed. A single failed collection aborts the stage before a
// single local row is touched; partially reconciling some collections and not
// others would leave cross-collection state inconsistent.
func (s *syncEngine) pullStage(ctx context.Context, state *cycleState) error {
	results := make([][]models.Document, len(models.Collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range models.Collections {
		g.Go(func() error {
			docs, err := s.adapter.Pull(gctx, coll.Type)
			if err != nil {
				return fmt.Errorf("pull %s: %w", coll.Type, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, coll := range models.Collections {
		if err := s.reconcileCollection(ctx, coll, results[i], state); err != nil {
			return fmt.Errorf("reconcile %s: %w", coll.Type, err)
		}
	}

	return nil
}

func (s *syncEngine) reconcileCollection(ctx context.Context, coll models.Collection, serverDocs []models.Document, state *cycleState) error {
	serverIDs := make(map[string]struct{}, len(serverDocs))

	for _, incoming := range serverDocs {
		if incoming.Type != coll.Type {
			s.log.Warn().Str("id", incoming.ID).Str("type", string(incoming.Type)).Msg("server returned document of wrong collection, skipping")
			continue
		}
		serverIDs[incoming.ID] = struct{}{}

		if err := s.upsertServerDocument(ctx, incoming); err != nil {
			return err
		}
	}

	if !coll.Reconcile {
		return nil
	}

	return s.reconcileDeletions(ctx, coll, serverIDs, state)
}

// upsertServerDocument folds one pulled document into the local store,
// preserving the revision chain. An unchanged document is left alone so a
// repeated pull against an unchanged server advances no revision tokens.
// A revision conflict on the write means a local mutation landed between the
// read and the write; the local edit wins this cycle and is pushed on the
// next one, same as the reconcileDeletions race.
func (s *syncEngine) upsertServerDocument(ctx context.Context, incoming models.Document) error {
	local, err := s.store.Get(ctx, incoming.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		incoming.Rev = 0
		if _, err = s.store.Put(ctx, incoming); err != nil {
			if errors.Is(err, store.ErrRevConflict) {
				return nil
			}
			return fmt.Errorf("store pulled %s: %w", incoming.ID, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("look up local %s: %w", incoming.ID, err)
	}

	// A locally tombstoned document whose deletion the server has not seen
	// yet must not be resurrected by a stale pull.
	if local.Deleted && local.Rev > local.PushedSeq {
		return nil
	}

	if local.EqualContent(&incoming) {
		return nil
	}

	incoming.Rev = local.Rev
	if _, err = s.store.Put(ctx, incoming); err != nil {
		if errors.Is(err, store.ErrRevConflict) {
			return nil
		}
		return fmt.Errorf("overwrite local %s: %w", incoming.ID, err)
	}

	return nil
}

// reconcileDeletions tombstones local documents that have vanished from the
// server's visible set. A document qualifies only if the server has provably
// observed it (non-zero pushed marker) and it did not fail this cycle's push;
// documents the server has never seen are new local work and always survive.
func (s *syncEngine) reconcileDeletions(ctx context.Context, coll models.Collection, serverIDs map[string]struct{}, state *cycleState) error {
	locals, err := s.store.Find(ctx, store.Selector{Type: coll.Type})
	if err != nil {
		return fmt.Errorf("list local documents: %w", err)
	}

	for _, d := range locals {
		if _, visible := serverIDs[d.ID]; visible {
			continue
		}
		if d.PushedSeq == 0 {
			continue
		}
		if _, failed := state.failed[d.ID]; failed {
			continue
		}

		err = s.store.SoftDelete(ctx, d.ID, d.Rev)
		if errors.Is(err, store.ErrRevConflict) {
			// Mutated locally between our read and the delete; the new
			// revision will be pushed and re-evaluated next cycle.
			continue
		}
		if err != nil {
			return fmt.Errorf("tombstone %s: %w", d.ID, err)
		}
		s.log.Debug().Str("id", d.ID).Msg("document reconciled away")
	}

	return nil
}
