package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-wish-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/servicemock/client_service_mock.go -package=servicemock

// SyncStatus is the externally visible state of a sync session.
type SyncStatus string

const (
	// StatusIdle means no cycle is running and the last one, if any, ended
	// cleanly.
	StatusIdle SyncStatus = "idle"

	// StatusSyncing means a push+pull cycle is in flight.
	StatusSyncing SyncStatus = "syncing"

	// StatusError means the last cycle failed; the failure was reported
	// through the onError callback.
	StatusError SyncStatus = "error"

	// StatusOffline means connectivity is absent. Triggers in this state
	// make no network calls.
	StatusOffline SyncStatus = "offline"
)

// SyncSession owns the full lifecycle of synchronization for one principal:
// the push+pull cycle, the status state machine, debounced triggering, and
// cancellation. Sessions are independent instances; two sessions share no
// hidden state.
type SyncSession interface {
	// SyncNow runs one push+pull cycle immediately, bypassing the debounce
	// window. A call arriving while a cycle is in flight does not start a
	// second one; it waits for the in-flight cycle and returns its outcome.
	SyncNow(ctx context.Context) error

	// TriggerSync requests a debounced cycle. All calls within one
	// coalescing window share a single execution and receive the identical
	// outcome. Returns ErrOffline without any network activity when
	// connectivity is absent.
	TriggerSync(ctx context.Context) error

	// Status returns the session's current state.
	Status() SyncStatus

	// SetOnline records a connectivity transition. Going offline moves the
	// session to StatusOffline; coming back moves it to StatusIdle without
	// triggering a cycle by itself.
	SetOnline(online bool)

	// OnError installs the single callback through which every cycle failure
	// is funnelled. Cancellation and offline triggers are never reported.
	OnError(fn func(error))

	// Stop cancels the in-flight cycle, cancels a pending debounce window
	// explicitly, and rejects all future triggers with ErrSessionStopped.
	Stop()
}

// ClientSyncJob runs periodic background sync triggers for a session.
type ClientSyncJob interface {
	// Start launches the periodic trigger loop. A previously running loop is
	// stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop terminates the loop and waits for it to exit.
	Stop()
}

// WishlistService is the local, optimistic mutation surface. Every operation
// writes to the embedded store first and requests a debounced sync; nothing
// blocks on the network.
type WishlistService interface {
	// CreateList creates a wishlist owned by the session principal.
	CreateList(ctx context.Context, fields json.RawMessage) (models.Document, error)

	// CreateItem creates an item under the given list, inheriting the list's
	// access array.
	CreateItem(ctx context.Context, listID string, fields json.RawMessage) (models.Document, error)

	// MarkItem marks an item as claimed by the session principal. The mark's
	// access array is the item's access array minus the item's owner, so the
	// owner never learns the item was claimed.
	MarkItem(ctx context.Context, itemID string) (models.Document, error)

	// ShareList grants another principal access to a list.
	ShareList(ctx context.Context, listID, principal string) (models.Document, error)

	// UpdateDocument overwrites a document's fields, keeping its revision
	// chain intact.
	UpdateDocument(ctx context.Context, id string, fields json.RawMessage) (models.Document, error)

	// DeleteDocument tombstones a document.
	DeleteDocument(ctx context.Context, id string) error
}
