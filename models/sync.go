// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// PullResponse is the body of GET /api/sync/pull/{collection}. It contains
// every document of the collection currently visible to the calling
// principal; the server performs the access-array filtering and the client
// never second-guesses it.
type PullResponse struct {
	Documents []Document `json:"documents"`

	// Length is the total number of entries in Documents, provided so the
	// client can validate the response without iterating it.
	Length int `json:"length"`
}

// PushRequest is the body of POST /api/sync/push/{collection}: one batch of
// locally authored documents of a single collection.
type PushRequest struct {
	Documents []Document `json:"documents"`
	Length    int        `json:"length"`
}

// PushResponse reports the outcome of a push batch. An empty Conflicts slice
// means every document was accepted as sent.
type PushResponse struct {
	Conflicts []PushConflict `json:"conflicts"`
}

// PushConflict describes a single rejected document from a push batch.
// Exactly one of ServerDocument or Error is populated: a conflict carrying
// the authoritative server document is recovered by adopting that version,
// while a bare error preserves the local copy and shields it from
// deletion-by-reconciliation for the remainder of the cycle.
type PushConflict struct {
	DocumentID     string    `json:"document_id"`
	ServerDocument *Document `json:"server_document,omitempty"`
	Error          string    `json:"error,omitempty"`
}
