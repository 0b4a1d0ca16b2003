// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds shared test helpers: channel receive/send
// assertions with timeout safety valves, so tests that wait on
// WebSocket events or timer-driven callbacks cannot hang the suite.
package testutil
