// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// DocType is the collection tag of a synchronized document. The set of valid
// values is closed; see Collections.
type DocType string

const (
	// DocTypeList is a wishlist document. Its access array names every
	// principal allowed to see the list and its items.
	DocTypeList DocType = "list"

	// DocTypeItem is a single wish on a list. Items inherit the access array
	// of their parent list.
	DocTypeItem DocType = "item"

	// DocTypeMark records that a principal intends to fulfil an item. A mark's
	// access array deliberately excludes the item's owner so the surprise is
	// preserved; the server enforces this on every push.
	DocTypeMark DocType = "mark"
)

// Document is the generic unit of synchronization. Domain payload fields live
// in Fields as raw JSON; the sync engine only interprets the envelope.
type Document struct {
	// ID is the stable, globally unique, type-prefixed identifier
	// (e.g. "item:018f4e7a-...").
	ID string `json:"id"`

	// Type is the collection tag. Immutable after creation.
	Type DocType `json:"type"`

	// Access is the set of principal identifiers permitted to read and write
	// the document. Order carries no meaning. The server is the sole
	// authority for this set; the client treats it as an optimization only.
	Access []string `json:"access"`

	// CreatedBy is the principal that authored the document. The push stage
	// only uploads documents authored by the current principal.
	CreatedBy string `json:"created_by"`

	// ParentID links a document to its owning hierarchy: items and marks
	// reference their list. Empty for lists.
	ParentID string `json:"parent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Deleted marks the document as a tombstone. Tombstones are never
	// physically removed from the local store.
	Deleted bool `json:"deleted,omitempty"`

	// Fields carries the collection-specific payload (title, url, price,
	// marked item id, ...) opaque to the sync engine.
	Fields json.RawMessage `json:"fields,omitempty"`

	// Rev is the local revision token: opaque to callers, monotonically
	// advancing per local store. Never transmitted to the server.
	Rev int64 `json:"-"`

	// PushedSeq is the local change-feed sequence at which this document was
	// last included in a push batch, or zero if the server has never observed
	// it. Reconciliation may only tombstone documents with PushedSeq > 0.
	PushedSeq int64 `json:"-"`
}

// CanRead reports whether principal is a member of the document's access
// array. This is a UX optimization only: the server's filtered pull response
// remains the trust boundary.
func (d *Document) CanRead(principal string) bool {
	return slices.Contains(d.Access, principal)
}

// EqualContent reports whether the two documents carry identical synchronized
// state, ignoring local-only bookkeeping (Rev, PushedSeq). Used by the pull
// stage to keep unchanged pulls from advancing revision tokens.
func (d *Document) EqualContent(other *Document) bool {
	if other == nil {
		return false
	}
	if d.ID != other.ID || d.Type != other.Type ||
		d.CreatedBy != other.CreatedBy || d.ParentID != other.ParentID ||
		d.Deleted != other.Deleted {
		return false
	}
	if !d.CreatedAt.Equal(other.CreatedAt) || !d.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	if !equalAccess(d.Access, other.Access) {
		return false
	}
	return equalFields(d.Fields, other.Fields)
}

func equalAccess(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

func equalFields(a, b json.RawMessage) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return bytes.Equal(a, b)
}
