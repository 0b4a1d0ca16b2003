// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amiabot/amiabot/lib/clock"
)

// Store owns every live session. It maps session IDs to session state
// and keeps a reverse index from each participant to their current
// session, enforcing that a participant belongs to at most one
// session at a time. Every method is atomic; read accessors return
// deep snapshots so callers never observe a torn or later-mutated
// session.
type Store struct {
	clock      clock.Clock
	historyCap int

	mu            sync.Mutex
	sessions      map[SessionID]*Session
	byParticipant map[ParticipantID]SessionID
}

// NewStore returns an empty store. historyCap bounds the retained
// message history per session; once exceeded, the oldest messages are
// discarded first.
func NewStore(clk clock.Clock, historyCap int) *Store {
	return &Store{
		clock:         clk,
		historyCap:    historyCap,
		sessions:      make(map[SessionID]*Session),
		byParticipant: make(map[ParticipantID]SessionID),
	}
}

// Create inserts a new Active session for a and, unless the partner
// is synthetic, b. Returns ErrDuplicateParticipant without mutating
// anything if either participant already has a live session — the
// matchmaker's exactly-once transition makes that unreachable, but
// the store defends against it.
func (s *Store) Create(a, b ParticipantID, botPartner bool) (SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byParticipant[a]; taken {
		return "", ErrDuplicateParticipant
	}
	if b != "" {
		if _, taken := s.byParticipant[b]; taken {
			return "", ErrDuplicateParticipant
		}
	}

	id := SessionID(uuid.NewString())
	s.sessions[id] = &Session{
		ID:           id,
		ParticipantA: a,
		ParticipantB: b,
		BotPartner:   botPartner,
		Status:       StatusActive,
		StartedAt:    s.clock.Now(),
		Decisions:    make(map[ParticipantID]Decision),
	}
	s.byParticipant[a] = id
	if b != "" {
		s.byParticipant[b] = id
	}
	return id, nil
}

// Get returns a snapshot of the session, if present.
func (s *Store) Get(id SessionID) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return snapshot(session), true
}

// GetByParticipant returns a snapshot of the participant's current
// session, if any. Ended sessions are never returned: ending a
// session removes its reverse-index entries.
func (s *Store) GetByParticipant(p ParticipantID) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byParticipant[p]
	if !ok {
		return Session{}, false
	}
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return snapshot(session), true
}

// AppendMessage adds a message to an Active session, trimming the
// oldest entries past the history cap. Returns false if the session
// is absent or no longer Active.
func (s *Store) AppendMessage(id SessionID, message Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.Status != StatusActive {
		return false
	}
	session.Messages = append(session.Messages, message)
	if excess := len(session.Messages) - s.historyCap; excess > 0 {
		session.Messages = append(session.Messages[:0:0], session.Messages[excess:]...)
	}
	return true
}

// RecordDecision upserts the participant's guess on a Decision-phase
// session. A second call for the same participant overwrites the
// first (last write wins). Returns false if the session is absent or
// not in the decision phase.
func (s *Store) RecordDecision(id SessionID, p ParticipantID, decision Decision) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.Status != StatusDecision {
		return false
	}
	session.Decisions[p] = decision
	return true
}

// Transition moves the session along one legal edge: Active→Decision
// or Decision→Ended. Anything else is a no-op returning false.
func (s *Store) Transition(id SessionID, to Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return false
	}
	legal := (session.Status == StatusActive && to == StatusDecision) ||
		(session.Status == StatusDecision && to == StatusEnded)
	if !legal {
		return false
	}
	session.Status = to
	if to == StatusEnded {
		s.endLocked(session)
	}
	return true
}

// End terminates the session from any live phase: sets Ended, stamps
// the end time, and removes both participants' reverse-index entries
// so they are immediately free to queue again. The session itself is
// retained for stats until the janitor prunes it. Returns false if
// the session is absent or already ended.
func (s *Store) End(id SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.Status == StatusEnded {
		return false
	}
	session.Status = StatusEnded
	s.endLocked(session)
	return true
}

func (s *Store) endLocked(session *Session) {
	session.EndedAt = s.clock.Now()
	if s.byParticipant[session.ParticipantA] == session.ID {
		delete(s.byParticipant, session.ParticipantA)
	}
	if session.ParticipantB != "" && s.byParticipant[session.ParticipantB] == session.ID {
		delete(s.byParticipant, session.ParticipantB)
	}
}

// Prune drops sessions started more than maxAge ago, regardless of
// status, and returns how many were removed. Run periodically so the
// retained-for-stats ended sessions do not accumulate forever.
func (s *Store) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock.Now().Add(-maxAge)
	pruned := 0
	for id, session := range s.sessions {
		if session.StartedAt.Before(cutoff) {
			if session.Status != StatusEnded {
				s.endLocked(session)
			}
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Stats is the read-only aggregate served by the stats endpoint.
// QueueSize is filled in by the Game, which owns the queue.
type Stats struct {
	QueueSize             int `json:"queue_size"`
	TotalSessions         int `json:"total_sessions"`
	ActiveSessions        int `json:"active_sessions"`
	DecisionSessions      int `json:"decision_sessions"`
	BotSessions           int `json:"bot_sessions"`
	HumanSessions         int `json:"human_sessions"`
	ConnectedParticipants int `json:"connected_users"`
}

// Stats aggregates the current sessions under one consistent snapshot.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		TotalSessions:         len(s.sessions),
		ConnectedParticipants: len(s.byParticipant),
	}
	for _, session := range s.sessions {
		switch session.Status {
		case StatusActive:
			stats.ActiveSessions++
		case StatusDecision:
			stats.DecisionSessions++
		}
		if session.BotPartner {
			stats.BotSessions++
		} else {
			stats.HumanSessions++
		}
	}
	return stats
}

// Sessions returns snapshots of every retained session, for the debug
// endpoint.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, snapshot(session))
	}
	return out
}

// snapshot deep-copies a session so callers can read it without
// holding the store lock.
func snapshot(session *Session) Session {
	copied := *session
	copied.Messages = append([]Message(nil), session.Messages...)
	copied.Decisions = make(map[ParticipantID]Decision, len(session.Decisions))
	for p, d := range session.Decisions {
		copied.Decisions[p] = d
	}
	return copied
}
