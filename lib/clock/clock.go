// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the matchmaking and conversation
// timers depend on. Production code injects Real(); tests inject
// Fake() and advance time deterministically.
//
// Anything that would otherwise call time.Now, time.After,
// time.AfterFunc, time.NewTicker, or time.Sleep takes a Clock instead.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc schedules f to run once after d. The returned Timer
	// can cancel the pending call with Stop; its C field is nil,
	// matching time.AfterFunc.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker returns a Ticker delivering ticks on C every d.
	// Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker

	// Sleep blocks the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Timer is a pending one-shot callback created by AfterFunc.
type Timer struct {
	// C is nil for AfterFunc timers, mirroring time.AfterFunc.
	C <-chan time.Time

	stop func() bool
}

// Stop cancels the pending call. Returns true if the timer was still
// pending, false if it already fired or was already stopped.
func (t *Timer) Stop() bool { return t.stop() }

// Ticker delivers periodic ticks on C. Call Stop when done. The
// channel has capacity 1; ticks are dropped rather than queued when
// the consumer falls behind, matching time.Ticker.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns the ticker off. Stop does not close C.
func (t *Ticker) Stop() { t.stop() }
