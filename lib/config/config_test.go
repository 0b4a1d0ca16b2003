// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amiabot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9000"
  debug: true
matchmaking:
  fallback_min: 20s
  fallback_max: 30s
conversation:
  duration: 2m
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Address != ":9000" || !cfg.Server.Debug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Matchmaking.FallbackMin.Std() != 20*time.Second {
		t.Errorf("fallback_min = %v", cfg.Matchmaking.FallbackMin.Std())
	}
	if cfg.Conversation.Duration.Std() != 2*time.Minute {
		t.Errorf("duration = %v", cfg.Conversation.Duration.Std())
	}

	// Untouched sections keep their defaults.
	if cfg.Matchmaking.MinWait.Std() != 5*time.Second {
		t.Errorf("min_wait = %v, want default", cfg.Matchmaking.MinWait.Std())
	}
	if cfg.Bot.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want default", cfg.Bot.Model)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("merged config invalid: %v", err)
	}
}

func TestLoadFileRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "matchmaking:\n  min_wait: fast\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("err = %v, want invalid duration", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWithoutEnvUsesDefaults(t *testing.T) {
	t.Setenv("AMIABOT_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("address = %q", cfg.Server.Address)
	}
}

func TestValidateTimingInvariants(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{
			"fallback range inverted",
			func(c *Config) {
				c.Matchmaking.FallbackMin = Duration(30 * time.Second)
				c.Matchmaking.FallbackMax = Duration(20 * time.Second)
			},
			"fallback_min exceeds fallback_max",
		},
		{
			"fallback before eligibility",
			func(c *Config) {
				c.Matchmaking.FallbackMin = Duration(2 * time.Second)
				c.Matchmaking.FallbackMax = Duration(25 * time.Second)
			},
			"fallback_min must be at least min_wait",
		},
		{
			"search horizon too short",
			func(c *Config) {
				c.Matchmaking.MaxAttempts = 2
			},
			"does not cover fallback_max",
		},
		{
			"missing model",
			func(c *Config) { c.Bot.Model = "" },
			"bot.model is required",
		},
		{
			"zero duration",
			func(c *Config) { c.Conversation.DecisionTime = 0 },
			"conversation.decision_time must be positive",
		},
		{
			"reply delay inverted",
			func(c *Config) {
				c.Bot.ReplyDelayMin = Duration(5 * time.Second)
				c.Bot.ReplyDelayMax = Duration(2 * time.Second)
			},
			"reply_delay_min exceeds reply_delay_max",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.edit(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("err = %v, want %q", err, test.want)
			}
		})
	}
}

func TestGameOptionsMapping(t *testing.T) {
	cfg := Default()
	cfg.Matchmaking.MinWait = Duration(7 * time.Second)
	cfg.Conversation.MaxMessageLength = 250

	opts := cfg.GameOptions()
	if opts.MinWait != 7*time.Second {
		t.Errorf("MinWait = %v", opts.MinWait)
	}
	if opts.MaxMessageLength != 250 {
		t.Errorf("MaxMessageLength = %d", opts.MaxMessageLength)
	}
	if opts.ConversationTime != 180*time.Second || opts.DecisionTime != 30*time.Second {
		t.Errorf("phase times = %v/%v", opts.ConversationTime, opts.DecisionTime)
	}
}
