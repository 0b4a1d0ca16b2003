// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"sync"
	"time"

	"github.com/amiabot/amiabot/lib/clock"
)

// QueueEntry is one waiting participant.
type QueueEntry struct {
	Participant ParticipantID
	JoinedAt    time.Time
}

// Queue is the FIFO matchmaking queue. Every method is atomic with
// respect to the others; callers never see the lock. At most one
// entry exists per participant.
type Queue struct {
	clock clock.Clock

	mu      sync.Mutex
	entries []QueueEntry
}

// NewQueue returns an empty queue using clk for join timestamps and
// wait measurement.
func NewQueue(clk clock.Clock) *Queue {
	return &Queue{clock: clk}
}

// Add appends the participant at the tail with the current time.
// Returns false, leaving the queue unchanged, if the participant is
// already queued.
func (q *Queue) Add(p ParticipantID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.indexLocked(p) >= 0 {
		return false
	}
	q.entries = append(q.entries, QueueEntry{Participant: p, JoinedAt: q.clock.Now()})
	return true
}

// Remove drops the participant's entry. Returns whether an entry was
// removed; removing an absent participant is not an error.
func (q *Queue) Remove(p ParticipantID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(p)
}

// Contains reports whether the participant holds a queue entry.
func (q *Queue) Contains(p ParticipantID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexLocked(p) >= 0
}

// FindPartner returns the earliest-joined participant other than
// exclude who has waited at least minWait. The queue is not mutated.
func (q *Queue) FindPartner(exclude ParticipantID, minWait time.Duration) (ParticipantID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.findLocked(exclude, minWait)
}

// takePair atomically claims a human-human match for p: p must still
// be queued, an eligible partner must exist, and both entries are
// removed in the same critical section. This is what makes two
// concurrent match attempts racing for the same partner resolve to
// exactly one winner.
func (q *Queue) takePair(p ParticipantID, minWait time.Duration) (ParticipantID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexLocked(p) < 0 {
		return "", false
	}
	partner, ok := q.findLocked(p, minWait)
	if !ok {
		return "", false
	}
	q.removeLocked(p)
	q.removeLocked(partner)
	return partner, true
}

// Len returns the number of waiting participants.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot copies the current entries in queue order.
func (q *Queue) Snapshot() []QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *Queue) indexLocked(p ParticipantID) int {
	for i, entry := range q.entries {
		if entry.Participant == p {
			return i
		}
	}
	return -1
}

func (q *Queue) removeLocked(p ParticipantID) bool {
	i := q.indexLocked(p)
	if i < 0 {
		return false
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return true
}

func (q *Queue) findLocked(exclude ParticipantID, minWait time.Duration) (ParticipantID, bool) {
	now := q.clock.Now()
	for _, entry := range q.entries {
		if entry.Participant == exclude {
			continue
		}
		if now.Sub(entry.JoinedAt) >= minWait {
			return entry.Participant, true
		}
	}
	return "", false
}
