// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock pinned to start. Time moves only when
// Advance is called; every timer, ticker, and sleep registers a
// pending entry that fires once the clock passes its deadline.
//
// FakeClock is safe for concurrent use.
func Fake(start time.Time) *FakeClock {
	fake := &FakeClock{now: start}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// FakeClock is a deterministic Clock for tests. AfterFunc callbacks
// run synchronously inside Advance, in deadline order. Calling
// Advance or Sleep from inside such a callback deadlocks.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*pendingTimer
	changed *sync.Cond
}

// pendingTimer is one registered timer, ticker, or sleep.
type pendingTimer struct {
	deadline time.Time

	// Exactly one of ch and fn is set: ch receives the fire time
	// (After, Sleep, Ticker), fn runs synchronously during Advance
	// (AfterFunc).
	ch chan time.Time
	fn func()

	// period is non-zero for tickers; the entry is rescheduled at
	// deadline+period after each fire.
	period time.Duration

	stopped bool
	fired   bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that receives once the clock advances past
// d from now. A non-positive d fires immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.pending = append(c.pending, &pendingTimer{deadline: c.now.Add(d), ch: ch})
	c.changed.Broadcast()
	return ch
}

// AfterFunc registers f to run when the clock advances past d. With
// d <= 0 the callback runs synchronously before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	c.mu.Lock()
	entry := &pendingTimer{deadline: c.now.Add(d), fn: f}
	c.pending = append(c.pending, entry)
	c.changed.Broadcast()
	c.mu.Unlock()

	return &Timer{stop: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if entry.stopped || entry.fired {
			return false
		}
		entry.stopped = true
		return true
	}}
}

// NewTicker returns a ticker firing every d of advanced time. Panics
// if d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	entry := &pendingTimer{deadline: c.now.Add(d), ch: ch, period: d}
	c.pending = append(c.pending, entry)
	c.changed.Broadcast()

	return &Ticker{C: ch, stop: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		entry.stopped = true
	}}
}

// Sleep blocks until the clock advances past d from now.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-c.After(d)
}

// Advance moves the clock forward by d, firing deadlines one at a
// time in order. The clock steps to each deadline before its entry
// fires, so a callback that schedules a follow-up timer (the
// matchmaker's retry cadence does this) sees the follow-up fire in
// the same Advance call when it lands inside the window.
//
// Channel sends are non-blocking; AfterFunc callbacks run in the
// calling goroutine.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		entry, ok := c.takeNextDue(target)
		if !ok {
			break
		}
		if entry.fn != nil {
			entry.fn()
			continue
		}
		select {
		case entry.ch <- entry.deadline:
		default:
		}
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// takeNextDue removes the earliest live entry with deadline <= target
// from the pending list and steps the clock to that deadline.
// Tickers are rescheduled rather than removed.
func (c *FakeClock) takeNextDue(target time.Time) (*pendingTimer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *pendingTimer
	for _, entry := range c.pending {
		if entry.stopped || entry.deadline.After(target) {
			continue
		}
		if next == nil || entry.deadline.Before(next.deadline) {
			next = entry
		}
	}
	if next == nil {
		return nil, false
	}

	if next.deadline.After(c.now) {
		c.now = next.deadline
	}

	if next.period > 0 {
		fire := *next
		next.deadline = next.deadline.Add(next.period)
		return &fire, true
	}

	next.fired = true
	keep := c.pending[:0]
	for _, entry := range c.pending {
		if entry != next && !entry.stopped {
			keep = append(keep, entry)
		}
	}
	c.pending = keep
	return next, true
}

// WaitForTimers blocks until at least n timers, tickers, or sleeps
// are registered and live. It closes the race between a goroutine
// registering a timer and the test advancing the clock:
//
//	go worker(fake)
//	fake.WaitForTimers(1)
//	fake.Advance(5 * time.Second)
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.liveLocked() < n {
		c.changed.Wait()
	}
}

// PendingCount reports the number of live pending entries.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveLocked()
}

func (c *FakeClock) liveLocked() int {
	n := 0
	for _, entry := range c.pending {
		if !entry.stopped {
			n++
		}
	}
	return n
}
