// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/internal/validators"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// syncAuthority implements [SyncAuthorityService]. It is the trust boundary
// of the protocol: access arrays stored on the server decide everything, and
// client-supplied arrays are accepted only within the rules below.
//
// Access rules:
//   - A pusher must appear in an existing document's stored access array to
//     touch it at all; a denied document comes back as a bare conflict so the
//     response does not leak its contents.
//   - Only the document's creator may change its access array; anyone else's
//     pushes keep the stored one.
//   - A mark's access array is always re-derived from its parent item, with
//     the item's owner removed, regardless of what the client sent.
type syncAuthority struct {
	documents store.ServerDocumentRepository
	validator validators.Validator
	logger    *logger.Logger
}

// NewSyncAuthorityService constructs the server-side sync service over the
// given document repository.
func NewSyncAuthorityService(documents store.ServerDocumentRepository, logger *logger.Logger) SyncAuthorityService {
	return &syncAuthority{
		documents: documents,
		validator: validators.NewDocumentValidator(),
		logger:    logger,
	}
}

// Pull returns every live document of collection t visible to principal. The
// repository evaluates the access arrays; nothing is filtered client-side.
func (s *syncAuthority) Pull(ctx context.Context, principal string, t models.DocType) ([]models.Document, error) {
	docs, err := s.documents.FindVisible(ctx, principal, t)
	if err != nil {
		return nil, fmt.Errorf("find visible %s documents: %w", t, err)
	}
	return docs, nil
}

// Push applies one batch. Each document is handled independently: a refused
// document becomes a conflict entry and the rest of the batch proceeds.
func (s *syncAuthority) Push(ctx context.Context, principal string, t models.DocType, docs []models.Document) ([]models.PushConflict, error) {
	log := logger.FromContext(ctx)

	var conflicts []models.PushConflict
	for _, incoming := range docs {
		if incoming.Type != t {
			conflicts = append(conflicts, models.PushConflict{
				DocumentID: incoming.ID,
				Error:      "document type does not match collection",
			})
			continue
		}
		if err := s.validator.Validate(ctx, incoming); err != nil {
			conflicts = append(conflicts, models.PushConflict{
				DocumentID: incoming.ID,
				Error:      err.Error(),
			})
			continue
		}

		conflict, err := s.applyDocument(ctx, principal, incoming)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			log.Debug().Str("id", incoming.ID).Str("error", conflict.Error).Msg("push conflict")
			conflicts = append(conflicts, *conflict)
		}
	}

	return conflicts, nil
}

func (s *syncAuthority) applyDocument(ctx context.Context, principal string, incoming models.Document) (*models.PushConflict, error) {
	existing, err := s.documents.GetDocument(ctx, incoming.ID)
	if errors.Is(err, store.ErrNotFound) {
		return s.insertDocument(ctx, principal, incoming)
	}
	if err != nil {
		return nil, fmt.Errorf("look up document %s: %w", incoming.ID, err)
	}

	return s.updateDocument(ctx, principal, incoming, existing)
}

func (s *syncAuthority) insertDocument(ctx context.Context, principal string, incoming models.Document) (*models.PushConflict, error) {
	// The pusher is the author of anything the server has never seen,
	// whatever the client claims.
	incoming.CreatedBy = principal

	access, conflict, err := s.authoritativeAccess(ctx, principal, incoming)
	if err != nil || conflict != nil {
		return conflict, err
	}
	incoming.Access = access

	err = s.documents.InsertDocument(ctx, incoming)
	if errors.Is(err, store.ErrDuplicate) {
		// Raced with a concurrent push of the same id; re-apply as update.
		existing, getErr := s.documents.GetDocument(ctx, incoming.ID)
		if getErr != nil {
			return nil, fmt.Errorf("re-read raced document %s: %w", incoming.ID, getErr)
		}
		return s.updateDocument(ctx, principal, incoming, existing)
	}
	if err != nil {
		return nil, fmt.Errorf("insert document %s: %w", incoming.ID, err)
	}

	return nil, nil
}

func (s *syncAuthority) updateDocument(ctx context.Context, principal string, incoming, existing models.Document) (*models.PushConflict, error) {
	if !existing.CanRead(principal) {
		// No server document in the conflict: the response must not leak a
		// document the pusher cannot see.
		return &models.PushConflict{
			DocumentID: incoming.ID,
			Error:      "access denied",
		}, nil
	}

	if existing.UpdatedAt.After(incoming.UpdatedAt) {
		serverDoc := existing
		return &models.PushConflict{
			DocumentID:     incoming.ID,
			ServerDocument: &serverDoc,
			Error:          "newer version on server",
		}, nil
	}

	// Authorship and creation time never change after insert.
	incoming.CreatedBy = existing.CreatedBy
	incoming.CreatedAt = existing.CreatedAt

	if principal == existing.CreatedBy && existing.Type != models.DocTypeMark {
		if !slices.Contains(incoming.Access, principal) {
			incoming.Access = append(slices.Clone(incoming.Access), principal)
		}
	} else {
		// Non-creators and marks keep the stored access array.
		incoming.Access = existing.Access
	}

	if err := s.documents.UpdateDocument(ctx, incoming); err != nil {
		return nil, fmt.Errorf("update document %s: %w", incoming.ID, err)
	}

	return nil, nil
}

// authoritativeAccess computes the access array the server will store for a
// new document, ignoring the client-supplied one where a rule applies.
func (s *syncAuthority) authoritativeAccess(ctx context.Context, principal string, incoming models.Document) ([]string, *models.PushConflict, error) {
	switch incoming.Type {
	case models.DocTypeMark:
		// Surprise preservation: the mark is visible to everyone who can see
		// the marked item except the item's owner.
		item, err := s.documents.GetDocument(ctx, incoming.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &models.PushConflict{
				DocumentID: incoming.ID,
				Error:      "marked item does not exist",
			}, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("look up marked item %s: %w", incoming.ParentID, err)
		}
		if !item.CanRead(principal) {
			return nil, &models.PushConflict{
				DocumentID: incoming.ID,
				Error:      "access denied",
			}, nil
		}

		access := make([]string, 0, len(item.Access))
		for _, p := range item.Access {
			if p != item.CreatedBy {
				access = append(access, p)
			}
		}
		if !slices.Contains(access, principal) {
			access = append(access, principal)
		}
		return access, nil, nil

	case models.DocTypeItem:
		// Items inherit their list's access array.
		list, err := s.documents.GetDocument(ctx, incoming.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &models.PushConflict{
				DocumentID: incoming.ID,
				Error:      "parent list does not exist",
			}, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("look up parent list %s: %w", incoming.ParentID, err)
		}
		if !list.CanRead(principal) {
			return nil, &models.PushConflict{
				DocumentID: incoming.ID,
				Error:      "access denied",
			}, nil
		}
		return slices.Clone(list.Access), nil, nil

	default:
		access := slices.Clone(incoming.Access)
		if !slices.Contains(access, principal) {
			access = append(access, principal)
		}
		return access, nil, nil
	}
}
