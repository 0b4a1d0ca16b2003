// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport carries the websocket wire protocol. A Hub owns
// all live connections, assigns each one a participant identity for
// its lifetime, dispatches inbound client events to game operations,
// and delivers the game core's outbound notifications as JSON events
// tagged with a "type" field.
package transport
