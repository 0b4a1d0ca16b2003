// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package game is the core of the server: the matchmaking queue, the
// session store, the matchmaking coordinator, and the conversation/
// decision state machine.
//
// Two structures own all shared mutable state. [Queue] holds waiting
// participants in FIFO order with join timestamps; [Store] owns every
// session plus a reverse index from participant to session. Each
// encapsulates its own mutex and exposes only atomic operations, so
// no caller ever sees or holds a lock.
//
// [Game] composes the two. Inbound transport events (JoinQueue,
// SendMessage, Typing, MakeDecision, Disconnect) and timer callbacks
// (match attempts, the synthetic-partner fallback, the conversation
// and decision phase timers) all funnel through it. Cross-structure
// sequences are not atomic as a pair; instead every timer callback
// re-checks its precondition when it fires and silently no-ops when
// the world has moved on — a participant already matched, a session
// already ended. That is the steady-state behavior of the many races
// between timers and participant actions, not an error.
//
// Sessions move through a strict linear lifecycle, Active → Decision
// → Ended. The reveal — each participant's guess against the ground
// truth — is delivered exactly once, gated on [Store.End], whether it
// was triggered by the final decision arriving or by the decision
// timer forcing random guesses for silent participants.
//
// The transport layer and the text generator are collaborators behind
// the [Notifier] and [Responder] interfaces; the core performs no I/O
// of its own, and the single blocking call (Responder.Reply) is made
// from a dedicated goroutine with no lock held.
package game
