// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import "errors"

// Sentinel errors returned to the transport layer. Only errors the
// participant can correct are surfaced as error events; everything
// else is logged and absorbed.
var (
	// ErrAlreadyQueued is returned by JoinQueue when the participant
	// already holds a queue entry.
	ErrAlreadyQueued = errors.New("game: already in queue")

	// ErrNoActiveSession is returned when an operation requires a
	// session and the participant has none.
	ErrNoActiveSession = errors.New("game: no active session")

	// ErrSessionNotActive is returned when a message arrives for a
	// session that has left the Active phase.
	ErrSessionNotActive = errors.New("game: session not active")

	// ErrNotInDecision is returned by MakeDecision outside the
	// decision phase.
	ErrNotInDecision = errors.New("game: not in decision phase")

	// ErrInvalidDecision is returned for decision values other than
	// "human" or "bot".
	ErrInvalidDecision = errors.New("game: invalid decision value")

	// ErrDuplicateParticipant is returned by Store.Create when a
	// participant already has a live session. The matchmaker's
	// invariants make this unreachable; the store defends anyway.
	ErrDuplicateParticipant = errors.New("game: participant already in a session")
)
