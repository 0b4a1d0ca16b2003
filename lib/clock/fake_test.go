// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNow(t *testing.T) {
	fake := Fake(start)
	if got := fake.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}
	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfter(t *testing.T) {
	fake := Fake(start)
	ch := fake.After(3 * time.Second)

	fake.Advance(2 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-ch:
		if want := start.Add(3 * time.Second); !fired.Equal(want) {
			t.Errorf("fire time = %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(start)
	for _, d := range []time.Duration{0, -time.Second} {
		select {
		case <-fake.After(d):
		default:
			t.Fatalf("After(%v) should fire immediately", d)
		}
	}
}

func TestFakeAfterFunc(t *testing.T) {
	fake := Fake(start)
	var fired atomic.Int32
	fake.AfterFunc(10*time.Second, func() { fired.Add(1) })

	fake.Advance(9 * time.Second)
	if fired.Load() != 0 {
		t.Fatal("callback ran early")
	}
	fake.Advance(time.Second)
	if fired.Load() != 1 {
		t.Fatal("callback did not run at deadline")
	}
	fake.Advance(time.Hour)
	if fired.Load() != 1 {
		t.Fatal("one-shot callback ran twice")
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	fake := Fake(start)
	var fired atomic.Int32
	timer := fake.AfterFunc(5*time.Second, func() { fired.Add(1) })

	if !timer.Stop() {
		t.Fatal("Stop on a pending timer should return true")
	}
	if timer.Stop() {
		t.Fatal("second Stop should return false")
	}
	fake.Advance(time.Minute)
	if fired.Load() != 0 {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeAfterFuncOrdering(t *testing.T) {
	fake := Fake(start)
	var order []int
	fake.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	fake.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	fake.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	fake.Advance(5 * time.Second)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("callbacks fired in order %v, want [1 2 3]", order)
	}
}

func TestFakeAfterFuncChained(t *testing.T) {
	// A callback that schedules a follow-up inside the advanced
	// window fires in the same Advance call. The matchmaker's retry
	// cadence depends on this.
	fake := Fake(start)
	var hops atomic.Int32
	var hop func()
	hop = func() {
		if hops.Add(1) < 3 {
			fake.AfterFunc(2*time.Second, hop)
		}
	}
	fake.AfterFunc(2*time.Second, hop)

	fake.Advance(10 * time.Second)
	if hops.Load() != 3 {
		t.Fatalf("chained callbacks ran %d times, want 3", hops.Load())
	}
}

func TestFakeTicker(t *testing.T) {
	fake := Fake(start)
	ticker := fake.NewTicker(time.Minute)
	defer ticker.Stop()

	fake.Advance(time.Minute)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after one interval")
	}

	// Two intervals with a full channel: one tick is dropped, the
	// ticker keeps going.
	fake.Advance(2 * time.Minute)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after further intervals")
	}

	ticker.Stop()
	fake.Advance(time.Hour)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeSleepAndWaitForTimers(t *testing.T) {
	fake := Fake(start)
	done := make(chan struct{})
	go func() {
		fake.Sleep(30 * time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(30 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestFakePendingCount(t *testing.T) {
	fake := Fake(start)
	if fake.PendingCount() != 0 {
		t.Fatal("fresh clock should have no pending timers")
	}
	timer := fake.AfterFunc(time.Second, func() {})
	fake.After(time.Second)
	if got := fake.PendingCount(); got != 2 {
		t.Fatalf("PendingCount() = %d, want 2", got)
	}
	timer.Stop()
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() after Stop = %d, want 1", got)
	}
}
