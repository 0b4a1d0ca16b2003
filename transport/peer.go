// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amiabot/amiabot/game"
)

const (
	// writeWait bounds one outbound frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may go without a pong before
	// the read side gives up; pings go out at pingPeriod.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxInboundBytes caps a single client frame. The largest legal
	// payload is a send_message at the message length cap, so 4 KiB
	// leaves ample envelope headroom.
	maxInboundBytes = 4096

	// sendBuffer is the per-connection outbound queue depth.
	sendBuffer = 32
)

// peer is one connected websocket client. The read pump drives game
// operations; the write pump owns the connection's write side. All
// outbound traffic goes through the buffered send channel.
type peer struct {
	id   game.ParticipantID
	hub  *Hub
	conn *websocket.Conn

	send chan []byte
	once sync.Once
}

// close shuts the send channel exactly once, which ends the write
// pump and closes the connection.
func (p *peer) close() {
	p.once.Do(func() { close(p.send) })
}

// readPump consumes client frames until the connection errors, then
// tears the participant down. Runs on the connection's handler
// goroutine.
func (p *peer) readPump() {
	defer p.hub.drop(p)

	p.conn.SetReadLimit(maxInboundBytes)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.hub.logger.Debug("websocket read failed",
					"participant", p.id,
					"error", err)
			}
			return
		}

		var event inbound
		if err := json.Unmarshal(data, &event); err != nil {
			p.hub.sendError(p.id, "Malformed event")
			continue
		}
		p.hub.handle(p.id, event)
	}
}

// writePump drains the send channel to the connection and keeps the
// connection alive with pings.
func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
