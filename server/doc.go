// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package server binds the websocket endpoint and the operational
// HTTP endpoints (health, stats, debug) to one TCP listener with
// graceful shutdown.
package server
