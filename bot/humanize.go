// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"
)

// touchChance is the probability that a generated reply gets one
// informal touch applied.
const touchChance = 0.15

// maxReplyRunes caps reply length; anything longer is trimmed back to
// its first sentences so the pacing stays conversational.
const maxReplyRunes = 280

// humanize applies light informal touches to a generated reply and
// clamps runaway length.
func humanize(text string) string {
	if text == "" {
		return text
	}

	if rand.Float64() < touchChance {
		switch rand.Intn(3) {
		case 0:
			first, size := utf8.DecodeRuneInString(text)
			text = string(unicode.ToLower(first)) + text[size:]
		case 1:
			text = strings.TrimRight(text, ".")
		case 2:
			if !strings.Contains(text, "haha") && !strings.Contains(text, "lol") {
				text += " haha"
			}
		}
	}

	return clampSentences(text)
}

// clampSentences trims text that exceeds maxReplyRunes back to its
// first two sentences.
func clampSentences(text string) string {
	if len([]rune(text)) <= maxReplyRunes {
		return text
	}
	sentences := strings.SplitAfter(text, ". ")
	if len(sentences) <= 2 {
		return text
	}
	return strings.TrimSpace(sentences[0] + sentences[1])
}
