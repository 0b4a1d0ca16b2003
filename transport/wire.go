// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "time"

// Inbound event types accepted from clients.
const (
	eventJoinQueue    = "join_queue"
	eventLeaveQueue   = "leave_queue"
	eventSendMessage  = "send_message"
	eventTyping       = "typing"
	eventMakeDecision = "make_decision"
)

// inbound is the envelope for every client-to-server event. Fields
// beyond Type are populated per event type.
type inbound struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	Typing   bool   `json:"typing,omitempty"`
	Decision string `json:"decision,omitempty"`
}

// Server-to-client events. Every payload carries its own type tag so
// clients can dispatch on a single field.

type connectedEvent struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type queueJoinedEvent struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
}

type matchFoundEvent struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	PartnerType string `json:"partner_type"`
}

type newMessageEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

type messageSentEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type partnerTypingEvent struct {
	Type   string `json:"type"`
	Typing bool   `json:"typing"`
}

// noteEvent covers the events whose payload is a single user-facing
// message: decision_recorded, conversation_ended, partner_disconnected,
// and error.
type noteEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type resultsEvent struct {
	Type     string `json:"type"`
	Decision string `json:"decision"`
	Actual   string `json:"actual"`
	Correct  bool   `json:"correct"`
}

func wireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
