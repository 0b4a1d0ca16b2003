// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm is a minimal chat-completions client behind the
// [Provider] interface. The bot package uses it to generate the
// synthetic partner's replies; everything provider-specific stays in
// here so the bot only deals in [Request] and [Response].
//
// API errors come back as [*ProviderError] carrying the HTTP status
// and the backend's error type and message.
package llm
