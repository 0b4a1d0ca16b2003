// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/amiabot/amiabot/game"
	"github.com/amiabot/amiabot/transport"
)

// RouteConfig configures the route handler. Game, Hub, and Logger are
// required.
type RouteConfig struct {
	Game   *game.Game
	Hub    *transport.Hub
	Logger *slog.Logger

	// Debug exposes the full-state debug endpoint. Off in
	// production: the snapshot includes message contents and ground
	// truth for live sessions.
	Debug bool
}

// statsPayload is the stats endpoint response: the game aggregate
// plus the live websocket connection count.
type statsPayload struct {
	game.Stats
	Connections int `json:"connections"`
}

// NewHandler assembles the HTTP surface: the websocket endpoint plus
// the health, stats, and optional debug endpoints.
func NewHandler(config RouteConfig) http.Handler {
	if config.Game == nil {
		panic("server: Game is required")
	}
	if config.Hub == nil {
		panic("server: Hub is required")
	}
	if config.Logger == nil {
		panic("server: Logger is required")
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", getOnly(config.Hub))

	mux.Handle("/health", getOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, config.Logger, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})))

	mux.Handle("/stats", getOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, config.Logger, statsPayload{
			Stats:       config.Game.Stats(),
			Connections: config.Hub.Connected(),
		})
	})))

	if config.Debug {
		mux.Handle("/debug", getOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, config.Logger, config.Game.Debug())
		})))
	}

	return mux
}

// getOnly restricts a handler to GET requests, standing in for the
// "GET /path" mux patterns that require Go 1.22.
func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug("response write failed", "error", err)
	}
}
