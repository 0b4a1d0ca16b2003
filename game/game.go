// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/amiabot/amiabot/lib/clock"
)

// Notifier delivers outbound events to a specific participant. The
// transport layer implements it; tests use a recording fake. Calls
// must not block for longer than one buffered send — a slow or gone
// participant is the transport's problem, not the core's.
type Notifier interface {
	QueueJoined(p ParticipantID, position int)
	MatchFound(p ParticipantID, session SessionID, kind PartnerKind)
	NewMessage(p ParticipantID, text string, sentAt time.Time)
	MessageSent(p ParticipantID, text string, sentAt time.Time)
	PartnerTyping(p ParticipantID, active bool)
	DecisionRecorded(p ParticipantID, note string)
	ConversationEnded(p ParticipantID, note string)
	Results(p ParticipantID, outcome Outcome)
	PartnerDisconnected(p ParticipantID)
}

// Responder produces the synthetic partner's conversation. Reply is
// the only blocking I/O the core triggers, and it is always issued
// from a dedicated goroutine with no lock held.
type Responder interface {
	// Opening returns the synthetic partner's first line.
	Opening() string

	// Reply answers the latest participant message given the recent
	// session history. Implementations must return within the
	// context deadline; the Game substitutes a recovery line on
	// error rather than surfacing the failure.
	Reply(ctx context.Context, latest string, history []Message) (string, error)
}

// Options configures a Game. Clock, Logger, Notifier, and Responder
// are required; zero timing values fall back to the production
// defaults below.
type Options struct {
	Clock     clock.Clock
	Logger    *slog.Logger
	Notifier  Notifier
	Responder Responder

	// MinWait is how long a participant must have queued before
	// being eligible for a human match, and the delay before their
	// own first match attempt.
	MinWait time.Duration

	// RetryInterval and MaxAttempts bound the human-match search:
	// attempts run at MinWait, MinWait+RetryInterval, ... until
	// MaxAttempts attempts have been made.
	RetryInterval time.Duration
	MaxAttempts   int

	// FallbackMin and FallbackMax bound the randomized delay before
	// a still-queued participant is paired with the synthetic
	// partner instead.
	FallbackMin time.Duration
	FallbackMax time.Duration

	// ConversationTime and DecisionTime bound the two live phases.
	ConversationTime time.Duration
	DecisionTime     time.Duration

	// ReplyDelayMin/Max bound the synthetic partner's simulated
	// typing time; OpeningDelay is the pause before its first line.
	ReplyDelayMin time.Duration
	ReplyDelayMax time.Duration
	OpeningDelay  time.Duration

	// ReplyTimeout caps one text-generation request.
	ReplyTimeout time.Duration

	// MaxMessageLength truncates inbound messages; HistoryCap bounds
	// the retained per-session history.
	MaxMessageLength int
	HistoryCap       int
}

// Production defaults, matching the configuration defaults in
// lib/config.
const (
	DefaultMinWait          = 5 * time.Second
	DefaultRetryInterval    = 2 * time.Second
	DefaultMaxAttempts      = 15
	DefaultFallbackMin      = 15 * time.Second
	DefaultFallbackMax      = 25 * time.Second
	DefaultConversationTime = 180 * time.Second
	DefaultDecisionTime     = 30 * time.Second
	DefaultReplyDelayMin    = 1 * time.Second
	DefaultReplyDelayMax    = 4 * time.Second
	DefaultOpeningDelay     = 1 * time.Second
	DefaultReplyTimeout     = 10 * time.Second
	DefaultMaxMessageLength = 500
	DefaultHistoryCap       = 50
)

// Game wires the queue, the session store, the matchmaker, and the
// conversation state machine together. All shared mutable state lives
// inside Queue and Store; Game methods and timer callbacks only
// compose their atomic operations, re-checking preconditions across
// the non-atomic seams.
type Game struct {
	opts   Options
	clock  clock.Clock
	logger *slog.Logger
	notify Notifier
	bot    Responder

	queue *Queue
	store *Store
}

// New builds a Game. Panics if a required dependency is missing —
// this is a wiring error, not a runtime condition.
func New(opts Options) *Game {
	if opts.Clock == nil {
		panic("game: Clock is required")
	}
	if opts.Logger == nil {
		panic("game: Logger is required")
	}
	if opts.Notifier == nil {
		panic("game: Notifier is required")
	}
	if opts.Responder == nil {
		panic("game: Responder is required")
	}

	defaultDuration(&opts.MinWait, DefaultMinWait)
	defaultDuration(&opts.RetryInterval, DefaultRetryInterval)
	defaultDuration(&opts.FallbackMin, DefaultFallbackMin)
	defaultDuration(&opts.FallbackMax, DefaultFallbackMax)
	defaultDuration(&opts.ConversationTime, DefaultConversationTime)
	defaultDuration(&opts.DecisionTime, DefaultDecisionTime)
	defaultDuration(&opts.ReplyDelayMin, DefaultReplyDelayMin)
	defaultDuration(&opts.ReplyDelayMax, DefaultReplyDelayMax)
	defaultDuration(&opts.OpeningDelay, DefaultOpeningDelay)
	defaultDuration(&opts.ReplyTimeout, DefaultReplyTimeout)
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxMessageLength == 0 {
		opts.MaxMessageLength = DefaultMaxMessageLength
	}
	if opts.HistoryCap == 0 {
		opts.HistoryCap = DefaultHistoryCap
	}

	return &Game{
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger,
		notify: opts.Notifier,
		bot:    opts.Responder,
		queue:  NewQueue(opts.Clock),
		store:  NewStore(opts.Clock, opts.HistoryCap),
	}
}

func defaultDuration(d *time.Duration, fallback time.Duration) {
	if *d == 0 {
		*d = fallback
	}
}

// Stats returns the aggregate the stats endpoint serves.
func (g *Game) Stats() Stats {
	stats := g.store.Stats()
	stats.QueueSize = g.queue.Len()
	return stats
}

// DebugState is the full state snapshot served by the debug endpoint.
type DebugState struct {
	Queue    []QueueEntry `json:"queue"`
	Sessions []Session    `json:"sessions"`
}

// Debug snapshots the queue and every retained session.
func (g *Game) Debug() DebugState {
	return DebugState{
		Queue:    g.queue.Snapshot(),
		Sessions: g.store.Sessions(),
	}
}

// Janitor periodically prunes sessions older than maxAge until the
// context is cancelled. Run it in its own goroutine.
func (g *Game) Janitor(ctx context.Context, every, maxAge time.Duration) {
	ticker := g.clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := g.store.Prune(maxAge); pruned > 0 {
				g.logger.Info("pruned stale sessions", "count", pruned)
			}
		}
	}
}
