// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that the
// matchmaking fallback, retry cadence, and phase timers can be driven
// deterministically in tests.
//
// Production wiring uses Real(). Tests use Fake(start), register the
// code under test, then call WaitForTimers followed by Advance to fire
// specific deadlines:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	g := game.New(game.Options{Clock: fake, ...})
//	g.JoinQueue("p1")
//	fake.Advance(25 * time.Second) // fallback fires, bot session forms
//
// Timer callbacks scheduled through AfterFunc are expected to re-check
// their preconditions when they fire; stale callbacks are no-ops, so
// nothing in this package needs to cancel timers on the happy path.
package clock
