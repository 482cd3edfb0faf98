// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServerAddress is returned by NewServer when no HTTP listen address is
// configured. This is treated as a fatal misconfiguration and causes the
// application to fail at startup.
var errNoServerAddress = errors.New("no server address is configured")
