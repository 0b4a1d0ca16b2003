// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot implements the synthetic conversation partner used when
// matchmaking falls back to a bot session. Replies are produced by a
// text-generation provider behind a persona prompt, post-processed for
// a casual register, and backed by canned fallback lines so provider
// failures never surface to the participant.
package bot
