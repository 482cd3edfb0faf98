package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-wish-keeper/models"
)

// pushStage reads the local change history once per cycle, partitions it by
// collection, and uploads one batch per collection. Reading once and
// partitioning keeps the cost at O(changes) instead of
// O(collections x changes).
func (s *syncEngine) pushStage(ctx context.Context) (*cycleState, error) {
	state := newCycleState()

	changes, err := s.store.ChangesSince(ctx, s.cursor)
	if err != nil {
		return nil, fmt.Errorf("read local changes: %w", err)
	}

	byType := make(map[models.DocType][]models.Document)
	for _, ch := range changes {
		if ch.Seq > state.snapshotSeq {
			state.snapshotSeq = ch.Seq
		}
		if ch.Doc == nil {
			continue
		}
		doc := *ch.Doc

		coll, ok := models.CollectionByType(doc.Type)
		if !ok {
			s.log.Warn().Str("id", doc.ID).Str("type", string(doc.Type)).Msg("skipping document of unknown collection")
			continue
		}
		// Only locally authored documents leave this client. Documents
		// merely received from other principals during a pull never go back
		// up, even if the change feed reports them.
		if coll.AuthoredOnly && doc.CreatedBy != s.principal {
			continue
		}
		// Already acknowledged at this revision; seen again only because the
		// cursor was reset (fresh session over an existing store).
		if doc.Rev <= doc.PushedSeq {
			continue
		}

		byType[doc.Type] = append(byType[doc.Type], doc)
	}

	for _, coll := range models.Collections {
		docs := byType[coll.Type]
		if len(docs) == 0 {
			continue
		}
		if err = s.pushCollection(ctx, coll.Type, docs, state); err != nil {
			return nil, err
		}
	}

	return state, nil
}

func (s *syncEngine) pushCollection(ctx context.Context, t models.DocType, docs []models.Document, state *cycleState) error {
	conflicts, err := s.adapter.Push(ctx, t, docs)
	if err != nil {
		return fmt.Errorf("push %s batch: %w", t, err)
	}

	for _, doc := range docs {
		state.pushed[doc.ID] = struct{}{}
	}

	conflicted := make(map[string]struct{}, len(conflicts))
	for _, c := range conflicts {
		conflicted[c.DocumentID] = struct{}{}

		if c.ServerDocument == nil {
			// Rejected outright. Keep the local copy untouched and shield it
			// from reconciliation this cycle.
			s.log.Warn().Str("id", c.DocumentID).Str("error", c.Error).Msg("push rejected by server")
			state.failed[c.DocumentID] = struct{}{}
			continue
		}

		if err = s.adoptServerDocument(ctx, *c.ServerDocument); err != nil {
			return err
		}
	}

	accepted := make([]string, 0, len(docs))
	for _, doc := range docs {
		if _, ok := conflicted[doc.ID]; !ok {
			accepted = append(accepted, doc.ID)
		}
	}
	if err = s.store.MarkPushed(ctx, accepted, state.snapshotSeq); err != nil {
		return fmt.Errorf("record pushed %s documents: %w", t, err)
	}

	return nil
}

// adoptServerDocument replaces the local copy with the server's authoritative
// version while preserving the local revision chain, so a later local write
// does not hit a stale-revision failure.
func (s *syncEngine) adoptServerDocument(ctx context.Context, serverDoc models.Document) error {
	local, err := s.store.Get(ctx, serverDoc.ID)
	if err != nil {
		return fmt.Errorf("load local %s for conflict adoption: %w", serverDoc.ID, err)
	}

	serverDoc.Rev = local.Rev
	newRev, err := s.store.Put(ctx, serverDoc)
	if err != nil {
		return fmt.Errorf("adopt server version of %s: %w", serverDoc.ID, err)
	}

	// The server demonstrably holds this document; record the adopted
	// revision as observed so it is not re-pushed or wrongly reconciled.
	if err = s.store.MarkPushed(ctx, []string{serverDoc.ID}, newRev); err != nil {
		return fmt.Errorf("record adopted %s: %w", serverDoc.ID, err)
	}

	return nil
}
