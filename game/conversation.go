// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

const decisionPrompt = "Time's up! Now decide: was your partner a Bot or Human?"

// botRecoveryLine is the last-resort reply when the Responder itself
// fails; the participant must never see a text-generation error.
const botRecoveryLine = "Sorry, I'm having trouble thinking right now. What were you saying?"

// SendMessage handles an inbound chat message. Empty messages are
// ignored; over-length messages are truncated. The message is
// appended to the session history, relayed to the partner (or handed
// to the synthetic partner for a reply), and echoed back to the
// sender.
func (g *Game) SendMessage(p ParticipantID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > g.opts.MaxMessageLength {
		text = string(runes[:g.opts.MaxMessageLength])
	}

	session, ok := g.store.GetByParticipant(p)
	if !ok {
		return ErrNoActiveSession
	}
	if session.Status != StatusActive {
		return ErrSessionNotActive
	}

	// Clock-drift safety: reject once the conversation window has
	// logically elapsed, even if the end-of-conversation timer has
	// not run yet.
	now := g.clock.Now()
	if now.Sub(session.StartedAt) >= g.opts.ConversationTime {
		g.notify.ConversationEnded(p, decisionPrompt)
		return nil
	}

	message := Message{Content: text, Sender: p, SentAt: now}
	if !g.store.AppendMessage(session.ID, message) {
		// Lost a race with the phase timer; the timer's notification
		// is on its way.
		return nil
	}

	if partner, ok := session.Partner(p); ok {
		g.notify.NewMessage(partner, text, now)
	}
	g.notify.MessageSent(p, text, now)

	if session.BotPartner {
		g.notify.PartnerTyping(p, true)
		go g.botReply(session.ID, p, text)
	}
	return nil
}

// Typing relays a human participant's typing indicator to their human
// partner. Synthetic-partner sessions manage the indicator around
// reply generation instead.
func (g *Game) Typing(p ParticipantID, active bool) {
	session, ok := g.store.GetByParticipant(p)
	if !ok || session.Status != StatusActive || session.BotPartner {
		return
	}
	if partner, ok := session.Partner(p); ok {
		g.notify.PartnerTyping(partner, active)
	}
}

// botReply generates and delivers the synthetic partner's reply to
// the latest message. Runs in its own goroutine: the generation
// request and the simulated typing pause must never hold up other
// participants' events.
func (g *Game) botReply(id SessionID, p ParticipantID, latest string) {
	session, ok := g.store.Get(id)
	if !ok || session.Status != StatusActive {
		g.notify.PartnerTyping(p, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.opts.ReplyTimeout)
	defer cancel()
	reply, err := g.bot.Reply(ctx, latest, session.Messages)
	if err != nil {
		g.logger.Warn("bot reply failed", "session", id, "error", err)
		reply = botRecoveryLine
	}

	g.clock.Sleep(g.replyDelay(reply))

	// The conversation may have moved on while we were thinking.
	session, ok = g.store.Get(id)
	if !ok || session.Status != StatusActive {
		g.notify.PartnerTyping(p, false)
		return
	}

	g.notify.PartnerTyping(p, false)
	message := Message{
		Content: reply,
		Sender:  BotSender,
		SentAt:  g.clock.Now(),
		FromBot: true,
	}
	if !g.store.AppendMessage(id, message) {
		return
	}
	g.notify.NewMessage(p, reply, message.SentAt)
}

// replyDelay simulates typing: a random base pause plus roughly ten
// characters per second, clamped to the configured bounds.
func (g *Game) replyDelay(reply string) time.Duration {
	base := g.opts.ReplyDelayMin
	if spread := g.opts.ReplyDelayMax - g.opts.ReplyDelayMin; spread > 0 {
		base += time.Duration(rand.Int63n(int64(spread)))
	}
	typing := time.Duration(len(reply)) * time.Second / 10
	delay := base + typing
	if delay > g.opts.ReplyDelayMax {
		delay = g.opts.ReplyDelayMax
	}
	if delay < g.opts.ReplyDelayMin {
		delay = g.opts.ReplyDelayMin
	}
	return delay
}

// endConversation is the conversation timer callback: it moves the
// session from Active to Decision, tells every real participant, and
// starts the decision timer. Fires for sessions that already ended
// (disconnect) are absorbed by the transition check.
func (g *Game) endConversation(id SessionID) {
	if !g.store.Transition(id, StatusDecision) {
		return
	}
	session, ok := g.store.Get(id)
	if !ok {
		return
	}
	g.logger.Info("conversation ended, decision phase open", "session", id)

	for _, p := range session.HumanParticipants() {
		g.notify.ConversationEnded(p, decisionPrompt)
	}
	g.clock.AfterFunc(g.opts.DecisionTime, func() { g.forceDecision(id) })
}

// MakeDecision records a participant's guess. The session completes
// as soon as every real participant has decided: one decision for a
// synthetic-partner session, two for a human-human session.
func (g *Game) MakeDecision(p ParticipantID, raw string) error {
	decision, err := ParseDecision(raw)
	if err != nil {
		return err
	}

	session, ok := g.store.GetByParticipant(p)
	if !ok {
		return ErrNoActiveSession
	}
	if session.Status != StatusDecision {
		return ErrNotInDecision
	}
	if !g.store.RecordDecision(session.ID, p, decision) {
		return ErrNotInDecision
	}
	g.logger.Info("decision recorded", "session", session.ID, "participant", p, "decision", decision)

	session, ok = g.store.Get(session.ID)
	if !ok {
		return nil
	}
	if len(session.Decisions) >= len(session.HumanParticipants()) {
		g.reveal(session.ID)
		return nil
	}
	g.notify.DecisionRecorded(p, "Waiting for your partner to decide...")
	return nil
}

// forceDecision is the decision timer callback: participants who
// stayed silent get a uniformly random guess so the session always
// reaches the reveal within the decision window. A no-op if the
// session already completed or ended.
func (g *Game) forceDecision(id SessionID) {
	session, ok := g.store.Get(id)
	if !ok || session.Status != StatusDecision {
		return
	}
	for _, p := range session.HumanParticipants() {
		if _, decided := session.Decisions[p]; decided {
			continue
		}
		forced := GuessedHuman
		if rand.Intn(2) == 0 {
			forced = GuessedBot
		}
		g.store.RecordDecision(id, p, forced)
		g.logger.Info("decision forced", "session", id, "participant", p, "decision", forced)
	}
	g.reveal(id)
}

// reveal ends the session and delivers each participant's result:
// their guess, the ground truth, and whether they were right. Ending
// the session first makes the reveal exactly-once — whichever caller
// loses the End race stops here.
func (g *Game) reveal(id SessionID) {
	if !g.store.End(id) {
		return
	}
	session, ok := g.store.Get(id)
	if !ok {
		return
	}

	actual := session.Truth()
	for p, decision := range session.Decisions {
		g.notify.Results(p, Outcome{
			Decision: decision,
			Actual:   actual,
			Correct:  decision == actual,
		})
	}
	g.logger.Info("session revealed",
		"session", id,
		"actual", actual,
		"decisions", len(session.Decisions),
	)
}

// Disconnect handles a participant's connection going away: their
// queue entry is dropped, and any live session ends immediately. A
// human partner is told; no reveal is computed on this path.
func (g *Game) Disconnect(p ParticipantID) {
	g.queue.Remove(p)

	session, ok := g.store.GetByParticipant(p)
	if !ok {
		return
	}
	g.logger.Info("participant disconnected from session",
		"session", session.ID,
		"participant", p,
		"bot_partner", session.BotPartner,
	)

	if partner, hasPartner := session.Partner(p); hasPartner {
		g.notify.PartnerDisconnected(partner)
	}
	g.store.End(session.ID)
}
