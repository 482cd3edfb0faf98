// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements persistence for both halves of go-wish-keeper:
// the client's embedded SQLite document store with its change feed and live
// query layer, and the server's PostgreSQL document and user repositories.
package store

import (
	"context"

	"github.com/MKhiriev/go-wish-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Change is one entry of the local change feed. Seq advances monotonically
// per store; a document appears in ChangesSince results at its latest
// sequence only.
type Change struct {
	// Seq is the store-wide sequence number assigned to this change.
	Seq int64

	// ID is the changed document's identifier.
	ID string

	// Deleted is true when the change is a tombstoning.
	Deleted bool

	// Doc is the document state after the change.
	Doc *models.Document
}

// Selector filters Find and Subscribe results. Zero-valued fields are
// ignored.
type Selector struct {
	// Type restricts results to one collection.
	Type models.DocType

	// ParentID restricts results to children of one document (items of a
	// list, marks of an item).
	ParentID string

	// CreatedBy restricts results to documents authored by one principal.
	CreatedBy string

	// IncludeDeleted opts into seeing tombstoned documents. Every query
	// excludes them by default.
	IncludeDeleted bool
}

// DocumentStore is the client-side embedded document store consumed by the
// sync engine and the live query layer.
type DocumentStore interface {
	// Get returns the document with the given id, tombstoned or not.
	// Returns ErrNotFound if no such document exists.
	Get(ctx context.Context, id string) (models.Document, error)

	// Put performs a revision-aware upsert. doc.Rev must equal the currently
	// stored revision (zero for a new document) or ErrRevConflict is
	// returned. On success the new revision token is returned and a change
	// is emitted on the feed.
	Put(ctx context.Context, doc models.Document) (int64, error)

	// SoftDelete tombstones the document without physically removing it.
	// rev must match the stored revision. Tombstoning an already-deleted
	// document is a no-op and emits no change, so subscribers observe each
	// deletion exactly once.
	SoftDelete(ctx context.Context, id string, rev int64) error

	// Find returns all documents matching sel, ordered by
	// (type, parent_id, updated_at). Tombstones are excluded unless
	// sel.IncludeDeleted is set.
	Find(ctx context.Context, sel Selector) ([]models.Document, error)

	// ChangesSince returns every document changed after the given sequence,
	// in sequence order, with document bodies included. A document appears
	// at most once, at its latest change.
	ChangesSince(ctx context.Context, since int64) ([]Change, error)

	// MarkPushed records that the server has observed the given documents up
	// to the given change-feed sequence. Reconciliation may only tombstone
	// documents with a non-zero pushed sequence.
	MarkPushed(ctx context.Context, ids []string, seq int64) error

	// Watch subscribes to the live change feed. The returned cancel function
	// releases the subscription; the channel is closed when the store shuts
	// down or the subscription is cancelled.
	Watch() (<-chan Change, func())

	// Close releases the underlying database handle and terminates all
	// watch subscriptions.
	Close() error
}

// ServerDocumentRepository is the server-side authoritative document store.
// Authority rules (access preservation, mark narrowing, conflict detection)
// live in the service layer; the repository only moves rows.
type ServerDocumentRepository interface {
	// GetDocument returns the document with the given id, deleted or not.
	// Returns ErrNotFound if no such document exists.
	GetDocument(ctx context.Context, id string) (models.Document, error)

	// FindVisible returns every live document of collection t whose access
	// array contains principal. This query is the trust boundary of the
	// whole sync protocol.
	FindVisible(ctx context.Context, principal string, t models.DocType) ([]models.Document, error)

	// InsertDocument stores a new document. Returns ErrDuplicate if the id
	// already exists.
	InsertDocument(ctx context.Context, doc models.Document) error

	// UpdateDocument overwrites an existing document's mutable columns.
	UpdateDocument(ctx context.Context, doc models.Document) error
}

// UserRepository manages server-side principal accounts.
type UserRepository interface {
	// CreateUser stores a new account. Returns ErrDuplicate when the
	// principal is already taken.
	CreateUser(ctx context.Context, user models.User) error

	// FindUserByPrincipal returns the stored account, with the password
	// hash populated. Returns ErrNotFound when no such principal exists.
	FindUserByPrincipal(ctx context.Context, principal string) (models.User, error)
}
