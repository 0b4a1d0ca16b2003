// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the server.
//
// Configuration is loaded from a single YAML file specified by:
//   - AMIABOT_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery; missing file means
// defaults. Environment variables do not override config values,
// with one exception: the text-generation API key is only ever read
// from OPENAI_API_KEY so it never lands in a config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amiabot/amiabot/game"
)

// Duration wraps time.Duration with YAML support for strings like
// "25s" or "3m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the master configuration for the server.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Matchmaking  MatchmakingConfig  `yaml:"matchmaking"`
	Conversation ConversationConfig `yaml:"conversation"`
	Bot          BotConfig          `yaml:"bot"`
	Janitor      JanitorConfig      `yaml:"janitor"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Address is the TCP listen address.
	Address string `yaml:"address"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// Debug exposes the full-state debug endpoint.
	Debug bool `yaml:"debug"`

	// AllowAnyOrigin disables the websocket same-origin check.
	// Needed when the frontend is served from a different origin.
	AllowAnyOrigin bool `yaml:"allow_any_origin"`
}

// MatchmakingConfig configures the queue and the human-match search.
type MatchmakingConfig struct {
	// MinWait is both the minimum queue time before a participant
	// is eligible for a human match and the delay before their own
	// first match attempt.
	MinWait Duration `yaml:"min_wait"`

	// RetryInterval and MaxAttempts bound the match search after
	// the first attempt.
	RetryInterval Duration `yaml:"retry_interval"`
	MaxAttempts   int      `yaml:"max_attempts"`

	// FallbackMin and FallbackMax bound the randomized delay before
	// a still-queued participant is matched with the synthetic
	// partner.
	FallbackMin Duration `yaml:"fallback_min"`
	FallbackMax Duration `yaml:"fallback_max"`
}

// ConversationConfig configures the two live session phases.
type ConversationConfig struct {
	Duration         Duration `yaml:"duration"`
	DecisionTime     Duration `yaml:"decision_time"`
	MaxMessageLength int      `yaml:"max_message_length"`
	HistoryCap       int      `yaml:"history_cap"`
}

// BotConfig configures the synthetic partner.
type BotConfig struct {
	// Model is the text-generation model name.
	Model string `yaml:"model"`

	// BaseURL overrides the generation API endpoint. Empty means
	// the provider default.
	BaseURL string `yaml:"base_url"`

	// ReplyDelayMin/Max bound the simulated typing time;
	// OpeningDelay is the pause before the opening line.
	ReplyDelayMin Duration `yaml:"reply_delay_min"`
	ReplyDelayMax Duration `yaml:"reply_delay_max"`
	OpeningDelay  Duration `yaml:"opening_delay"`

	// ReplyTimeout caps one generation request.
	ReplyTimeout Duration `yaml:"reply_timeout"`
}

// JanitorConfig configures stale-session pruning.
type JanitorConfig struct {
	Interval Duration `yaml:"interval"`
	MaxAge   Duration `yaml:"max_age"`
}

// Default returns the production defaults. Timing defaults mirror
// the game package's.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Matchmaking: MatchmakingConfig{
			MinWait:       Duration(game.DefaultMinWait),
			RetryInterval: Duration(game.DefaultRetryInterval),
			MaxAttempts:   game.DefaultMaxAttempts,
			FallbackMin:   Duration(game.DefaultFallbackMin),
			FallbackMax:   Duration(game.DefaultFallbackMax),
		},
		Conversation: ConversationConfig{
			Duration:         Duration(game.DefaultConversationTime),
			DecisionTime:     Duration(game.DefaultDecisionTime),
			MaxMessageLength: game.DefaultMaxMessageLength,
			HistoryCap:       game.DefaultHistoryCap,
		},
		Bot: BotConfig{
			Model:         "gpt-4o-mini",
			ReplyDelayMin: Duration(game.DefaultReplyDelayMin),
			ReplyDelayMax: Duration(game.DefaultReplyDelayMax),
			OpeningDelay:  Duration(game.DefaultOpeningDelay),
			ReplyTimeout:  Duration(game.DefaultReplyTimeout),
		},
		Janitor: JanitorConfig{
			Interval: Duration(time.Hour),
			MaxAge:   Duration(24 * time.Hour),
		},
	}
}

// Load loads configuration from the AMIABOT_CONFIG environment
// variable. Unset means defaults.
func Load() (*Config, error) {
	path := os.Getenv("AMIABOT_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks internal consistency. Beyond simple positivity
// checks it enforces the matchmaking timing invariants:
//
//   - fallback_min <= fallback_max
//   - fallback_min >= min_wait
//   - min_wait + retry_interval*max_attempts >= fallback_max
//
// The last one guarantees the human-match search is still retrying
// when the bot fallback can fire, so a queued participant is never
// left in limbo between the two.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("server.address is required"))
	}

	m := c.Matchmaking
	for name, d := range map[string]Duration{
		"matchmaking.min_wait":       m.MinWait,
		"matchmaking.retry_interval": m.RetryInterval,
		"matchmaking.fallback_min":   m.FallbackMin,
		"matchmaking.fallback_max":   m.FallbackMax,
		"conversation.duration":      c.Conversation.Duration,
		"conversation.decision_time": c.Conversation.DecisionTime,
		"bot.reply_timeout":          c.Bot.ReplyTimeout,
		"janitor.interval":           c.Janitor.Interval,
		"janitor.max_age":            c.Janitor.MaxAge,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if m.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("matchmaking.max_attempts must be at least 1"))
	}

	if m.FallbackMin > m.FallbackMax {
		errs = append(errs, fmt.Errorf("matchmaking.fallback_min exceeds fallback_max"))
	}
	if m.FallbackMin < m.MinWait {
		errs = append(errs, fmt.Errorf("matchmaking.fallback_min must be at least min_wait"))
	}
	if horizon := m.MinWait.Std() + time.Duration(m.MaxAttempts)*m.RetryInterval.Std(); horizon < m.FallbackMax.Std() {
		errs = append(errs, fmt.Errorf(
			"matchmaking search horizon %s does not cover fallback_max %s; raise max_attempts or retry_interval",
			horizon, m.FallbackMax.Std()))
	}

	if c.Bot.ReplyDelayMin > c.Bot.ReplyDelayMax {
		errs = append(errs, fmt.Errorf("bot.reply_delay_min exceeds reply_delay_max"))
	}
	if c.Bot.Model == "" {
		errs = append(errs, fmt.Errorf("bot.model is required"))
	}
	if c.Conversation.MaxMessageLength < 1 {
		errs = append(errs, fmt.Errorf("conversation.max_message_length must be at least 1"))
	}
	if c.Conversation.HistoryCap < 1 {
		errs = append(errs, fmt.Errorf("conversation.history_cap must be at least 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// GameOptions maps the timing configuration onto game options. The
// caller fills in the runtime dependencies.
func (c *Config) GameOptions() game.Options {
	return game.Options{
		MinWait:          c.Matchmaking.MinWait.Std(),
		RetryInterval:    c.Matchmaking.RetryInterval.Std(),
		MaxAttempts:      c.Matchmaking.MaxAttempts,
		FallbackMin:      c.Matchmaking.FallbackMin.Std(),
		FallbackMax:      c.Matchmaking.FallbackMax.Std(),
		ConversationTime: c.Conversation.Duration.Std(),
		DecisionTime:     c.Conversation.DecisionTime.Std(),
		ReplyDelayMin:    c.Bot.ReplyDelayMin.Std(),
		ReplyDelayMax:    c.Bot.ReplyDelayMax.Std(),
		OpeningDelay:     c.Bot.OpeningDelay.Std(),
		ReplyTimeout:     c.Bot.ReplyTimeout.Std(),
		MaxMessageLength: c.Conversation.MaxMessageLength,
		HistoryCap:       c.Conversation.HistoryCap,
	}
}
