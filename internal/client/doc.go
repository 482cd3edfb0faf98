// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the offline-first client runtime: the embedded
// document store, the HTTP server adapter, the sync session with its
// background workers, and the wishlist mutation surface. The package is the
// composition root used by cmd/client; all domain logic lives in the layers
// it wires together.
package client
