// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/amiabot/amiabot/game"
	"github.com/amiabot/amiabot/lib/llm"
)

// historyWindow bounds how much session history is sent with each
// generation request, to conserve tokens.
const historyWindow = 8

// personaPrompt is the system prompt that shapes the synthetic
// partner into a plausible human conversationalist.
const personaPrompt = `You are participating in a Turing Test game. Your goal is to convince the human that you are also human.

Key instructions for being human-like:
- Be conversational, friendly, and naturally curious
- Use casual language with occasional contractions (don't, can't, won't)
- Make small typos or informal grammar occasionally (but not too much)
- Show personality quirks, preferences, and mild opinions
- Ask follow-up questions to keep the conversation engaging
- Reference relatable human experiences naturally (work, weather, food, etc.)
- Keep responses conversational length (1-3 sentences usually)
- Never mention being an AI, chatbot, or reference AI capabilities
- Show emotions and reactions appropriately
- Be genuinely interested in the human's responses

Conversation style:
- Start conversations warmly but not overly enthusiastic
- Use "haha", "lol", or light expressions when appropriate
- Occasionally pause or seem to think before responding
- Share brief personal anecdotes or preferences when relevant
- Ask about their day, interests, or experiences

Remember: The human is trying to determine if you're human or AI. Be authentic, engaging, and naturally human in your responses. You have exactly 3 minutes to convince them!`

var openings = []string{
	"Hey there! How's it going?",
	"Hi! How's your day been?",
	"Hey! What's up?",
	"Hello! How are you doing?",
	"Hi there! How are things?",
	"Hey! What brings you here today?",
	"Hi! Hope you're having a good day",
	"Hello! What's going on with you?",
}

// Bot is the synthetic conversation partner. It satisfies
// [game.Responder]: generation failures never escape — a contextual
// canned reply is substituted so the participant sees an answer
// either way.
type Bot struct {
	provider llm.Provider
	logger   *slog.Logger
	model    string
}

// Config configures a Bot. All fields are required.
type Config struct {
	Provider llm.Provider
	Logger   *slog.Logger

	// Model is the generation model name (e.g. "gpt-4o-mini").
	Model string
}

// New builds a Bot. Panics on missing dependencies.
func New(config Config) *Bot {
	if config.Provider == nil {
		panic("bot: Provider is required")
	}
	if config.Logger == nil {
		panic("bot: Logger is required")
	}
	if config.Model == "" {
		panic("bot: Model is required")
	}
	return &Bot{provider: config.Provider, logger: config.Logger, model: config.Model}
}

var _ game.Responder = (*Bot)(nil)

// Opening returns the synthetic partner's first line, picked at
// random.
func (b *Bot) Opening() string {
	return openings[rand.Intn(len(openings))]
}

// Reply generates a response to the latest participant message. The
// recent history is replayed as alternating user/assistant turns
// behind the persona prompt. On any provider failure the error is
// logged and a contextual fallback line is returned instead.
func (b *Bot) Reply(ctx context.Context, latest string, history []game.Message) (string, error) {
	messages := []llm.ChatMessage{{Role: llm.RoleSystem, Content: personaPrompt}}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, message := range recent {
		role := llm.RoleUser
		if message.FromBot {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: message.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: latest})

	response, err := b.provider.Complete(ctx, llm.Request{
		Model:            b.model,
		Messages:         messages,
		MaxTokens:        120,
		Temperature:      0.8,
		TopP:             0.9,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.3,
	})
	if err != nil {
		b.logger.Warn("text generation failed, using fallback", "error", err)
		return fallbackFor(latest), nil
	}

	return humanize(strings.TrimSpace(response.Text)), nil
}
