// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"fmt"
	"time"
)

// ParticipantID is the opaque per-connection token the transport
// layer assigns to a connected participant. The core treats it as a
// key, never as an owned entity.
type ParticipantID string

// BotSender is the sentinel sender recorded on messages written by
// the synthetic partner.
const BotSender ParticipantID = "bot"

// SessionID uniquely identifies a session.
type SessionID string

// Status is a session's phase. The lifecycle is strictly linear:
// Active → Decision → Ended, no cycles, no re-entry.
type Status int

const (
	StatusActive Status = iota
	StatusDecision
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDecision:
		return "decision"
	case StatusEnded:
		return "ended"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Decision is a participant's guess about their partner.
type Decision string

const (
	GuessedHuman Decision = "human"
	GuessedBot   Decision = "bot"
)

// ParseDecision validates a wire decision value.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(raw) {
	case GuessedHuman, GuessedBot:
		return Decision(raw), nil
	}
	return "", ErrInvalidDecision
}

// Message is one utterance in a session's history. Immutable once
// appended.
type Message struct {
	Content string
	Sender  ParticipantID // BotSender for the synthetic partner
	SentAt  time.Time
	FromBot bool
}

// Session is one matched conversation. The Store owns all Session
// values; accessors hand out snapshots, so a Session held by a caller
// never mutates underneath it.
type Session struct {
	ID           SessionID
	ParticipantA ParticipantID
	ParticipantB ParticipantID // empty iff BotPartner
	BotPartner   bool
	Status       Status
	StartedAt    time.Time
	EndedAt      time.Time // zero until ended
	Messages     []Message
	Decisions    map[ParticipantID]Decision
}

// Partner returns the other human participant. ok is false for
// synthetic-partner sessions and for participants not in the session.
func (s *Session) Partner(p ParticipantID) (ParticipantID, bool) {
	if s.BotPartner {
		return "", false
	}
	switch p {
	case s.ParticipantA:
		return s.ParticipantB, true
	case s.ParticipantB:
		return s.ParticipantA, true
	}
	return "", false
}

// HumanParticipants returns the real participants in the session: one
// for a synthetic-partner session, two otherwise.
func (s *Session) HumanParticipants() []ParticipantID {
	if s.BotPartner {
		return []ParticipantID{s.ParticipantA}
	}
	return []ParticipantID{s.ParticipantA, s.ParticipantB}
}

// Truth is the ground-truth answer for the session's reveal.
func (s *Session) Truth() Decision {
	if s.BotPartner {
		return GuessedBot
	}
	return GuessedHuman
}

// Outcome is one participant's reveal result.
type Outcome struct {
	Decision Decision
	Actual   Decision
	Correct  bool
}

// PartnerKind is what a participant is told about their match. The
// synthetic case is reported as "unknown" so the protocol never leaks
// ground truth before the reveal.
type PartnerKind string

const (
	PartnerKindHuman   PartnerKind = "human"
	PartnerKindUnknown PartnerKind = "unknown"
)
