// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amiabot/amiabot/lib/clock"
	"github.com/amiabot/amiabot/lib/testutil"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// event is one outbound notification captured by the recorder.
type event struct {
	kind    string
	to      ParticipantID
	text    string
	session SessionID
	partner PartnerKind
	typing  bool
	outcome Outcome
}

// recorder implements Notifier by pushing every call onto a buffered
// channel, so tests can assert on delivery order per participant.
type recorder struct {
	events chan event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan event, 128)}
}

func (r *recorder) QueueJoined(p ParticipantID, position int) {
	r.events <- event{kind: "queue_joined", to: p}
}

func (r *recorder) MatchFound(p ParticipantID, session SessionID, kind PartnerKind) {
	r.events <- event{kind: "match_found", to: p, session: session, partner: kind}
}

func (r *recorder) NewMessage(p ParticipantID, text string, sentAt time.Time) {
	r.events <- event{kind: "new_message", to: p, text: text}
}

func (r *recorder) MessageSent(p ParticipantID, text string, sentAt time.Time) {
	r.events <- event{kind: "message_sent", to: p, text: text}
}

func (r *recorder) PartnerTyping(p ParticipantID, active bool) {
	r.events <- event{kind: "partner_typing", to: p, typing: active}
}

func (r *recorder) DecisionRecorded(p ParticipantID, note string) {
	r.events <- event{kind: "decision_recorded", to: p, text: note}
}

func (r *recorder) ConversationEnded(p ParticipantID, note string) {
	r.events <- event{kind: "conversation_ended", to: p, text: note}
}

func (r *recorder) Results(p ParticipantID, outcome Outcome) {
	r.events <- event{kind: "results", to: p, outcome: outcome}
}

func (r *recorder) PartnerDisconnected(p ParticipantID) {
	r.events <- event{kind: "partner_disconnected", to: p}
}

// next pops the next captured event of the given kind, failing the
// test if something else arrives first or nothing arrives at all.
func (r *recorder) next(t *testing.T, kind string) event {
	t.Helper()
	got := testutil.RequireReceive(t, r.events, 5*time.Second, "waiting for %s", kind)
	if got.kind != kind {
		t.Fatalf("next event = %s (to %s), want %s", got.kind, got.to, kind)
	}
	return got
}

// nextFor pops captured events until one of the given kind addressed
// to p arrives. Use when two participants' events interleave.
func (r *recorder) nextFor(t *testing.T, kind string, p ParticipantID) event {
	t.Helper()
	for {
		got := testutil.RequireReceive(t, r.events, 5*time.Second, "waiting for %s to %s", kind, p)
		if got.kind == kind && got.to == p {
			return got
		}
	}
}

// quiet asserts nothing further arrives within a short grace period,
// covering events delivered from goroutines winding down.
func (r *recorder) quiet(t *testing.T) {
	t.Helper()
	testutil.RequireNoReceive(t, r.events, 50*time.Millisecond, "expected no further events")
}

// stubResponder is a deterministic Responder for tests.
type stubResponder struct {
	opening string
	reply   string
	err     error
}

func (s *stubResponder) Opening() string { return s.opening }

func (s *stubResponder) Reply(ctx context.Context, latest string, history []Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// newTestGame builds a Game on a fake clock with deterministic timing:
// fallback pinned to 20s, bot reply delay pinned to 2s.
func newTestGame(t *testing.T, overrides func(*Options)) (*Game, *clock.FakeClock, *recorder) {
	t.Helper()
	fake := clock.Fake(testStart)
	rec := newRecorder()
	opts := Options{
		Clock:            fake,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		Notifier:         rec,
		Responder:        &stubResponder{opening: "Hey there! How's it going?", reply: "haha, fair enough"},
		MinWait:          5 * time.Second,
		RetryInterval:    2 * time.Second,
		MaxAttempts:      15,
		FallbackMin:      20 * time.Second,
		FallbackMax:      20 * time.Second,
		ConversationTime: 180 * time.Second,
		DecisionTime:     30 * time.Second,
		ReplyDelayMin:    2 * time.Second,
		ReplyDelayMax:    2 * time.Second,
		OpeningDelay:     time.Second,
		MaxMessageLength: 500,
		HistoryCap:       50,
	}
	if overrides != nil {
		overrides(&opts)
	}
	return New(opts), fake, rec
}
