// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

var (
	ErrNotAuthenticated     = errors.New("not authenticated: call Register or Login first")
	ErrAlreadyAuthenticated = errors.New("runtime already started for a principal")
)
