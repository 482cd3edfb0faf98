package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/internal/utils"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// wishlistService implements [WishlistService]. Every mutation is optimistic:
// it lands in the local store immediately and a debounced sync is requested;
// the network never blocks the caller.
type wishlistService struct {
	store     store.DocumentStore
	session   SyncSession
	ids       *utils.UUIDGenerator
	principal string
	log       *logger.Logger
}

// NewWishlistService constructs the local mutation surface for one principal.
func NewWishlistService(st store.DocumentStore, session SyncSession, principal string, log *logger.Logger) WishlistService {
	return &wishlistService{
		store:     st,
		session:   session,
		ids:       utils.NewUUIDGenerator(),
		principal: principal,
		log:       log,
	}
}

func (w *wishlistService) CreateList(ctx context.Context, fields json.RawMessage) (models.Document, error) {
	doc := w.newDocument(models.DocTypeList, "", []string{w.principal}, fields)
	return w.create(ctx, doc)
}

func (w *wishlistService) CreateItem(ctx context.Context, listID string, fields json.RawMessage) (models.Document, error) {
	list, err := w.store.Get(ctx, listID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load list %s: %w", listID, err)
	}

	// Items inherit their list's access array.
	doc := w.newDocument(models.DocTypeItem, listID, slices.Clone(list.Access), fields)
	return w.create(ctx, doc)
}

// MarkItem claims an item for the session principal. The mark's access array
// is the item's access array minus the item's owner, so the owner never sees
// that the item was claimed. The server re-derives this narrowing on push and
// is the authority; the local copy is only the optimistic view.
func (w *wishlistService) MarkItem(ctx context.Context, itemID string) (models.Document, error) {
	item, err := w.store.Get(ctx, itemID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load item %s: %w", itemID, err)
	}

	access := make([]string, 0, len(item.Access))
	for _, p := range item.Access {
		if p != item.CreatedBy {
			access = append(access, p)
		}
	}
	if !slices.Contains(access, w.principal) {
		access = append(access, w.principal)
	}

	fields, err := json.Marshal(map[string]string{"marked_by": w.principal})
	if err != nil {
		return models.Document{}, fmt.Errorf("encode mark fields: %w", err)
	}

	doc := w.newDocument(models.DocTypeMark, itemID, access, fields)
	return w.create(ctx, doc)
}

func (w *wishlistService) ShareList(ctx context.Context, listID, principal string) (models.Document, error) {
	list, err := w.store.Get(ctx, listID)
	if err != nil {
		return models.Document{}, fmt.Errorf("load list %s: %w", listID, err)
	}

	if !slices.Contains(list.Access, principal) {
		list.Access = append(slices.Clone(list.Access), principal)
		list.UpdatedAt = time.Now().UTC()

		rev, err := w.store.Put(ctx, list)
		if err != nil {
			return models.Document{}, fmt.Errorf("share list %s: %w", listID, err)
		}
		list.Rev = rev
	}

	w.requestSync()
	return list, nil
}

func (w *wishlistService) UpdateDocument(ctx context.Context, id string, fields json.RawMessage) (models.Document, error) {
	doc, err := w.store.Get(ctx, id)
	if err != nil {
		return models.Document{}, fmt.Errorf("load document %s: %w", id, err)
	}

	doc.Fields = fields
	doc.UpdatedAt = time.Now().UTC()

	rev, err := w.store.Put(ctx, doc)
	if err != nil {
		return models.Document{}, fmt.Errorf("update document %s: %w", id, err)
	}
	doc.Rev = rev

	w.requestSync()
	return doc, nil
}

func (w *wishlistService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := w.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load document %s: %w", id, err)
	}

	if err = w.store.SoftDelete(ctx, id, doc.Rev); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	w.requestSync()
	return nil
}

func (w *wishlistService) newDocument(t models.DocType, parentID string, access []string, fields json.RawMessage) models.Document {
	now := time.Now().UTC()
	return models.Document{
		ID:        w.ids.GenerateDocumentID(t),
		Type:      t,
		Access:    access,
		CreatedBy: w.principal,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
		Fields:    fields,
	}
}

func (w *wishlistService) create(ctx context.Context, doc models.Document) (models.Document, error) {
	rev, err := w.store.Put(ctx, doc)
	if err != nil {
		return models.Document{}, fmt.Errorf("store new %s: %w", doc.Type, err)
	}
	doc.Rev = rev

	w.requestSync()
	return doc, nil
}

// requestSync fires a debounced trigger without waiting for the outcome.
// Offline and stopped-session results are expected here and not worth a log
// line; real cycle failures reach the session's onError funnel.
func (w *wishlistService) requestSync() {
	go func() {
		_ = w.session.TriggerSync(context.Background())
	}()
}
