// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/amiabot/amiabot/game"
)

// Hub upgrades websocket connections, assigns each one a participant
// identity, and relays traffic in both directions: inbound events are
// dispatched to game operations, and it implements [game.Notifier] for
// the outbound side.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	// game is set once via Bind before the first connection; the Hub
	// and the Game reference each other.
	game *game.Game

	mu    sync.Mutex
	peers map[game.ParticipantID]*peer
}

// Config configures a Hub. Logger is required.
type Config struct {
	Logger *slog.Logger

	// CheckOrigin overrides the origin policy. Nil means same-origin
	// only, per gorilla's default.
	CheckOrigin func(r *http.Request) bool
}

// NewHub builds a Hub. Bind must be called before serving.
func NewHub(config Config) *Hub {
	if config.Logger == nil {
		panic("transport: Logger is required")
	}
	return &Hub{
		logger: config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		peers: make(map[game.ParticipantID]*peer),
	}
}

var _ game.Notifier = (*Hub)(nil)

// Bind attaches the game core. Separate from NewHub because the Game
// itself is constructed with the Hub as its Notifier.
func (h *Hub) Bind(g *game.Game) {
	h.game = g
}

// ServeHTTP upgrades the request and runs the connection until it
// drops. Each connection gets a fresh participant identity; there is
// no reconnect protocol.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	p := &peer{
		id:   game.ParticipantID(uuid.NewString()),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.peers[p.id] = p
	h.mu.Unlock()

	h.logger.Info("participant connected", "participant", p.id)

	go p.writePump()
	h.deliver(p.id, connectedEvent{Type: "connected", Status: "Connected to server"})
	p.readPump()
}

// Connected reports the number of live connections.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// drop unregisters a peer and tells the game core the participant is
// gone. Safe to call once per peer; readPump's defer is the only
// caller.
func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	delete(h.peers, p.id)
	h.mu.Unlock()

	p.close()
	h.game.Disconnect(p.id)
	h.logger.Info("participant disconnected", "participant", p.id)
}

// handle dispatches one inbound event to the game core and converts
// operation errors into error events.
func (h *Hub) handle(p game.ParticipantID, event inbound) {
	var err error
	switch event.Type {
	case eventJoinQueue:
		err = h.game.JoinQueue(p)
	case eventLeaveQueue:
		h.game.LeaveQueue(p)
	case eventSendMessage:
		err = h.game.SendMessage(p, event.Message)
	case eventTyping:
		h.game.Typing(p, event.Typing)
	case eventMakeDecision:
		err = h.game.MakeDecision(p, event.Decision)
	default:
		h.sendError(p, "Unknown event type")
		return
	}
	if err != nil {
		h.sendError(p, userMessage(err))
	}
}

// userMessage maps game errors to the strings shown to participants.
func userMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrAlreadyQueued):
		return "Already in queue"
	case errors.Is(err, game.ErrNoActiveSession):
		return "No active session"
	case errors.Is(err, game.ErrSessionNotActive):
		return "Conversation has ended"
	case errors.Is(err, game.ErrNotInDecision):
		return "Not in decision phase"
	case errors.Is(err, game.ErrInvalidDecision):
		return "Invalid decision"
	default:
		return "Internal error"
	}
}

func (h *Hub) sendError(p game.ParticipantID, message string) {
	h.deliver(p, noteEvent{Type: "error", Message: message})
}

// deliver marshals and queues one event for a participant. A full
// send buffer drops the event rather than blocking the core; the
// keepalive machinery will reap a connection that stopped draining.
func (h *Hub) deliver(p game.ParticipantID, event any) {
	h.mu.Lock()
	target, ok := h.peers[p]
	h.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("event marshal failed", "error", err)
		return
	}

	select {
	case target.send <- data:
	default:
		h.logger.Warn("send buffer full, dropping event",
			"participant", p)
	}
}

// game.Notifier implementation.

func (h *Hub) QueueJoined(p game.ParticipantID, position int) {
	h.deliver(p, queueJoinedEvent{Type: "queue_joined", Position: position})
}

func (h *Hub) MatchFound(p game.ParticipantID, session game.SessionID, kind game.PartnerKind) {
	h.deliver(p, matchFoundEvent{
		Type:        "match_found",
		SessionID:   string(session),
		PartnerType: string(kind),
	})
}

func (h *Hub) NewMessage(p game.ParticipantID, text string, sentAt time.Time) {
	h.deliver(p, newMessageEvent{
		Type:      "new_message",
		Message:   text,
		Sender:    "partner",
		Timestamp: wireTime(sentAt),
	})
}

func (h *Hub) MessageSent(p game.ParticipantID, text string, sentAt time.Time) {
	h.deliver(p, messageSentEvent{
		Type:      "message_sent",
		Message:   text,
		Timestamp: wireTime(sentAt),
	})
}

func (h *Hub) PartnerTyping(p game.ParticipantID, active bool) {
	h.deliver(p, partnerTypingEvent{Type: "partner_typing", Typing: active})
}

func (h *Hub) DecisionRecorded(p game.ParticipantID, note string) {
	h.deliver(p, noteEvent{Type: "decision_recorded", Message: note})
}

func (h *Hub) ConversationEnded(p game.ParticipantID, note string) {
	h.deliver(p, noteEvent{Type: "conversation_ended", Message: note})
}

func (h *Hub) Results(p game.ParticipantID, outcome game.Outcome) {
	h.deliver(p, resultsEvent{
		Type:     "results",
		Decision: string(outcome.Decision),
		Actual:   string(outcome.Actual),
		Correct:  outcome.Correct,
	})
}

func (h *Hub) PartnerDisconnected(p game.ParticipantID) {
	h.deliver(p, noteEvent{
		Type:    "partner_disconnected",
		Message: "Your partner has disconnected",
	})
}
