// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amiabot/amiabot/lib/clock"
)

func newTestStore(historyCap int) (*Store, *clock.FakeClock) {
	fake := clock.Fake(testStart)
	return NewStore(fake, historyCap), fake
}

func TestStoreCreateAndLookup(t *testing.T) {
	s, _ := newTestStore(50)

	id, err := s.Create("a", "b", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	session, ok := s.Get(id)
	if !ok {
		t.Fatal("Get did not find the created session")
	}
	if session.Status != StatusActive {
		t.Errorf("status = %v, want active", session.Status)
	}
	if session.ParticipantA != "a" || session.ParticipantB != "b" || session.BotPartner {
		t.Errorf("unexpected session shape: %+v", session)
	}

	for _, p := range []ParticipantID{"a", "b"} {
		got, ok := s.GetByParticipant(p)
		if !ok || got.ID != id {
			t.Errorf("GetByParticipant(%s) = %v, %v; want session %s", p, got.ID, ok, id)
		}
	}
}

func TestStoreCreateBotSession(t *testing.T) {
	s, _ := newTestStore(50)

	id, err := s.Create("a", "", true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	session, _ := s.Get(id)
	if !session.BotPartner || session.ParticipantB != "" {
		t.Errorf("unexpected bot session shape: %+v", session)
	}
	if _, ok := s.GetByParticipant(""); ok {
		t.Error("empty participant must not be indexed")
	}
}

func TestStoreCreateRejectsDuplicateParticipant(t *testing.T) {
	s, _ := newTestStore(50)
	if _, err := s.Create("a", "b", false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, pair := range [][2]ParticipantID{{"a", "x"}, {"x", "b"}} {
		_, err := s.Create(pair[0], pair[1], false)
		if !errors.Is(err, ErrDuplicateParticipant) {
			t.Errorf("Create(%s, %s) error = %v, want ErrDuplicateParticipant", pair[0], pair[1], err)
		}
	}

	// The failed creates must not have clobbered the index.
	if _, ok := s.GetByParticipant("x"); ok {
		t.Error("failed Create left a reverse-index entry behind")
	}
}

func TestStoreAtMostOneSessionPerParticipant(t *testing.T) {
	s, _ := newTestStore(50)

	id, _ := s.Create("a", "b", false)
	if !s.End(id) {
		t.Fatal("End failed")
	}

	// Immediately after End, both participants are free.
	if _, ok := s.GetByParticipant("a"); ok {
		t.Fatal("participant still indexed after End")
	}
	if _, err := s.Create("a", "c", false); err != nil {
		t.Fatalf("Create after End failed: %v", err)
	}
}

func TestStoreEndIdempotentAndStamps(t *testing.T) {
	s, fake := newTestStore(50)
	id, _ := s.Create("a", "", true)

	fake.Advance(time.Minute)
	if !s.End(id) {
		t.Fatal("first End should succeed")
	}
	if s.End(id) {
		t.Fatal("second End should report false")
	}
	if s.End("nope") {
		t.Fatal("End of an absent session should report false")
	}

	session, _ := s.Get(id)
	if session.Status != StatusEnded {
		t.Errorf("status = %v, want ended", session.Status)
	}
	if want := testStart.Add(time.Minute); !session.EndedAt.Equal(want) {
		t.Errorf("EndedAt = %v, want %v", session.EndedAt, want)
	}
}

func TestStoreTransitionLegalEdgesOnly(t *testing.T) {
	s, _ := newTestStore(50)

	tests := []struct {
		name string
		prep func(*Store, SessionID)
		to   Status
		want bool
	}{
		{"active to decision", nil, StatusDecision, true},
		{"active to ended", nil, StatusEnded, false},
		{"active to active", nil, StatusActive, false},
		{"decision to ended", func(s *Store, id SessionID) { s.Transition(id, StatusDecision) }, StatusEnded, true},
		{"decision to active", func(s *Store, id SessionID) { s.Transition(id, StatusDecision) }, StatusActive, false},
		{"ended to decision", func(s *Store, id SessionID) { s.End(id) }, StatusDecision, false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ParticipantID(fmt.Sprintf("a%d", i))
			b := ParticipantID(fmt.Sprintf("b%d", i))
			id, _ := s.Create(a, b, false)
			before, _ := s.Get(id)
			if tt.prep != nil {
				tt.prep(s, id)
				before, _ = s.Get(id)
			}
			if got := s.Transition(id, tt.to); got != tt.want {
				t.Fatalf("Transition(%v) = %v, want %v", tt.to, got, tt.want)
			}
			if !tt.want {
				after, _ := s.Get(id)
				if after.Status != before.Status {
					t.Fatalf("illegal transition mutated status: %v -> %v", before.Status, after.Status)
				}
			}
		})
	}

	if s.Transition("absent", StatusDecision) {
		t.Error("Transition on an absent session should fail")
	}
}

func TestStoreTransitionToEndedClearsIndex(t *testing.T) {
	s, _ := newTestStore(50)
	id, _ := s.Create("a", "b", false)
	s.Transition(id, StatusDecision)

	if !s.Transition(id, StatusEnded) {
		t.Fatal("Decision→Ended should succeed")
	}
	if _, ok := s.GetByParticipant("a"); ok {
		t.Error("participant still indexed after Decision→Ended")
	}
}

func TestStoreAppendMessage(t *testing.T) {
	s, _ := newTestStore(3)
	id, _ := s.Create("a", "", true)

	for i := 0; i < 5; i++ {
		ok := s.AppendMessage(id, Message{Content: fmt.Sprintf("m%d", i), Sender: "a"})
		if !ok {
			t.Fatalf("AppendMessage %d failed", i)
		}
	}

	session, _ := s.Get(id)
	if len(session.Messages) != 3 {
		t.Fatalf("history length = %d, want cap 3", len(session.Messages))
	}
	// Oldest discarded first; most recent three retained in order.
	for i, want := range []string{"m2", "m3", "m4"} {
		if session.Messages[i].Content != want {
			t.Errorf("message[%d] = %q, want %q", i, session.Messages[i].Content, want)
		}
	}
}

func TestStoreAppendMessageGating(t *testing.T) {
	s, _ := newTestStore(50)
	id, _ := s.Create("a", "", true)

	if s.AppendMessage("absent", Message{Content: "x"}) {
		t.Error("append to an absent session should fail")
	}
	s.Transition(id, StatusDecision)
	if s.AppendMessage(id, Message{Content: "x"}) {
		t.Error("append outside Active should fail")
	}
	session, _ := s.Get(id)
	if len(session.Messages) != 0 {
		t.Error("rejected append mutated the history")
	}
}

func TestStoreRecordDecisionGating(t *testing.T) {
	s, _ := newTestStore(50)
	id, _ := s.Create("a", "b", false)

	if s.RecordDecision(id, "a", GuessedBot) {
		t.Error("decision during Active should be rejected")
	}

	s.Transition(id, StatusDecision)
	if !s.RecordDecision(id, "a", GuessedBot) {
		t.Error("decision during Decision phase should be accepted")
	}
	// Last write wins on a repeat.
	if !s.RecordDecision(id, "a", GuessedHuman) {
		t.Error("repeat decision should be accepted")
	}
	session, _ := s.Get(id)
	if session.Decisions["a"] != GuessedHuman {
		t.Errorf("decision = %v, want human (last write)", session.Decisions["a"])
	}

	s.Transition(id, StatusEnded)
	if s.RecordDecision(id, "b", GuessedBot) {
		t.Error("decision after Ended should be rejected")
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(50)
	id, _ := s.Create("a", "", true)
	s.AppendMessage(id, Message{Content: "original", Sender: "a"})

	snap, _ := s.Get(id)
	snap.Messages[0].Content = "mutated"
	snap.Decisions["a"] = GuessedBot

	fresh, _ := s.Get(id)
	if fresh.Messages[0].Content != "original" {
		t.Error("caller mutation leaked into the store")
	}
	if len(fresh.Decisions) != 0 {
		t.Error("caller decision write leaked into the store")
	}
}

func TestStoreStats(t *testing.T) {
	s, _ := newTestStore(50)

	active, _ := s.Create("a", "b", false)
	_ = active
	decision, _ := s.Create("c", "", true)
	s.Transition(decision, StatusDecision)
	ended, _ := s.Create("d", "", true)
	s.End(ended)

	got := s.Stats()
	want := Stats{
		TotalSessions:         3,
		ActiveSessions:        1,
		DecisionSessions:      1,
		BotSessions:           2,
		HumanSessions:         1,
		ConnectedParticipants: 3, // a, b, c — d was released by End
	}
	if got != want {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}
}

func TestStorePrune(t *testing.T) {
	s, fake := newTestStore(50)

	old, _ := s.Create("a", "", true)
	fake.Advance(25 * time.Hour)
	fresh, _ := s.Create("b", "", true)

	if pruned := s.Prune(24 * time.Hour); pruned != 1 {
		t.Fatalf("Prune removed %d sessions, want 1", pruned)
	}
	if _, ok := s.Get(old); ok {
		t.Error("stale session survived Prune")
	}
	if _, ok := s.Get(fresh); !ok {
		t.Error("fresh session was pruned")
	}
	// Pruning a live session must free its participant.
	if _, ok := s.GetByParticipant("a"); ok {
		t.Error("pruned session left a reverse-index entry")
	}
}
