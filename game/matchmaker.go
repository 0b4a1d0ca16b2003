// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"math/rand"
	"time"
)

// JoinQueue enters the participant into matchmaking. On success it
// schedules two independent timers: the human-match search starting
// after the minimum wait, and the synthetic-partner fallback after a
// randomized longer delay. Whichever removes the participant from the
// queue first wins; the other callback finds the entry gone and
// becomes a no-op.
func (g *Game) JoinQueue(p ParticipantID) error {
	if !g.queue.Add(p) {
		return ErrAlreadyQueued
	}
	g.notify.QueueJoined(p, g.queue.Len())

	fallback := g.opts.FallbackMin
	if spread := g.opts.FallbackMax - g.opts.FallbackMin; spread > 0 {
		fallback += time.Duration(rand.Int63n(int64(spread)))
	}
	g.logger.Info("participant queued",
		"participant", p,
		"queue_size", g.queue.Len(),
		"fallback_in", fallback,
	)

	g.clock.AfterFunc(fallback, func() { g.matchWithBot(p) })
	g.clock.AfterFunc(g.opts.MinWait, func() { g.attemptMatch(p, 1) })
	return nil
}

// LeaveQueue withdraws the participant, if queued. The pending timers
// are left to expire; both no-op once the entry is gone.
func (g *Game) LeaveQueue(p ParticipantID) bool {
	return g.queue.Remove(p)
}

// attemptMatch is the human-match search, attempt number n. It runs
// as a timer callback: if p has already been matched or left, it does
// nothing; otherwise it tries to claim a partner and either forms a
// session or reschedules itself at the retry cadence until the
// attempt ceiling.
func (g *Game) attemptMatch(p ParticipantID, n int) {
	if !g.queue.Contains(p) {
		return
	}

	partner, ok := g.queue.takePair(p, g.opts.MinWait)
	if !ok {
		if n < g.opts.MaxAttempts {
			g.clock.AfterFunc(g.opts.RetryInterval, func() { g.attemptMatch(p, n+1) })
		} else {
			g.logger.Debug("match attempts exhausted, fallback pending", "participant", p)
		}
		return
	}

	id, err := g.store.Create(p, partner, false)
	if err != nil {
		// Unreachable if the queue/store invariants hold: takePair
		// removed both from the queue, and a queued participant has
		// no session. Log and drop the match.
		g.logger.Error("human match rejected by store",
			"participant", p, "partner", partner, "error", err)
		return
	}
	g.logger.Info("human match formed", "session", id, "a", p, "b", partner)

	g.notify.MatchFound(p, id, PartnerKindHuman)
	g.notify.MatchFound(partner, id, PartnerKindHuman)

	g.clock.AfterFunc(g.opts.ConversationTime, func() { g.endConversation(id) })
}

// matchWithBot is the fallback timer callback: if p is still queued
// when it fires, p is paired with the synthetic partner. Removal from
// the queue doubles as the still-queued check, so a concurrent human
// match cannot double-consume p.
func (g *Game) matchWithBot(p ParticipantID) {
	if !g.queue.Remove(p) {
		return
	}

	id, err := g.store.Create(p, "", true)
	if err != nil {
		g.logger.Error("bot match rejected by store", "participant", p, "error", err)
		return
	}
	g.logger.Info("bot match formed", "session", id, "participant", p)

	// The partner kind stays "unknown" until the reveal.
	g.notify.MatchFound(p, id, PartnerKindUnknown)

	g.clock.AfterFunc(g.opts.ConversationTime, func() { g.endConversation(id) })
	go g.sendOpening(id, p)
}

// sendOpening delivers the synthetic partner's first line after a
// short pause, unless the session has already left the Active phase.
func (g *Game) sendOpening(id SessionID, p ParticipantID) {
	g.clock.Sleep(g.opts.OpeningDelay)

	session, ok := g.store.Get(id)
	if !ok || session.Status != StatusActive {
		return
	}

	opening := g.bot.Opening()
	message := Message{
		Content: opening,
		Sender:  BotSender,
		SentAt:  g.clock.Now(),
		FromBot: true,
	}
	if !g.store.AppendMessage(id, message) {
		return
	}
	g.notify.NewMessage(p, opening, message.SentAt)
}
