// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"math/rand"
	"strings"
)

var questionFallbacks = []string{
	"Hmm, that's a good question! Let me think about that for a sec",
	"Oh interesting question! I'm not totally sure actually",
	"Good question! What do you think?",
	"Hmm, I'd have to think about that one. What's your take?",
}

var emotionalFallbacks = []string{
	"I totally get that feeling",
	"Yeah, I know what you mean",
	"That makes a lot of sense",
	"I hear you on that one",
}

var shortFallbacks = []string{
	"What's on your mind?",
	"Tell me more!",
	"How's everything going with you?",
	"What have you been up to lately?",
}

var generalFallbacks = []string{
	"That's really interesting! Tell me more about that",
	"Oh nice! I hadn't thought about it that way",
	"Haha, fair enough. What else is going on?",
	"Cool! So what do you usually do for fun?",
	"Interesting! I've been meaning to look into that",
}

var emotionalWords = []string{
	"feel", "sad", "happy", "angry", "excited", "worried",
	"stressed", "tired", "love", "hate",
}

// fallbackFor picks a canned reply loosely matched to the tone of the
// participant's last message. Used when generation fails so the
// conversation never stalls.
func fallbackFor(latest string) string {
	lower := strings.ToLower(latest)

	if strings.Contains(latest, "?") {
		return pick(questionFallbacks)
	}
	for _, word := range emotionalWords {
		if strings.Contains(lower, word) {
			return pick(emotionalFallbacks)
		}
	}
	if len(strings.Fields(latest)) <= 3 {
		return pick(shortFallbacks)
	}
	return pick(generalFallbacks)
}

func pick(pool []string) string {
	return pool[rand.Intn(len(pool))]
}
