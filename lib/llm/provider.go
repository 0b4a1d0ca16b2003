// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
)

// Provider is the interface to a text-generation backend.
// Implementations translate between the common types here and the
// vendor's wire format. The bot package consumes this; tests provide
// an httptest-backed fake.
type Provider interface {
	// Complete sends a chat request and blocks until the full
	// response is available or ctx expires.
	Complete(ctx context.Context, request Request) (*Response, error)
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of conversation context.
type ChatMessage struct {
	Role    Role
	Content string
}

// Request is a provider-independent chat completion request.
type Request struct {
	Model    string
	Messages []ChatMessage

	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Response is the completed generation.
type Response struct {
	// Text is the assistant's reply content.
	Text string

	// Model is the model name the backend reports.
	Model string

	// FinishReason is the backend's stop reason (e.g. "stop",
	// "length").
	FinishReason string
}

// ProviderError is returned when the backend responds with an error
// status. Callers can use errors.As to inspect it:
//
//	var providerErr *llm.ProviderError
//	if errors.As(err, &providerErr) && providerErr.IsRateLimited() { ... }
type ProviderError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Type is the provider-specific error type string
	// (e.g. "invalid_request_error", "rate_limit_error").
	Type string

	// Message is the human-readable description.
	Message string
}

func (err *ProviderError) Error() string {
	if err.Type != "" {
		return fmt.Sprintf("llm: HTTP %d: %s: %s", err.StatusCode, err.Type, err.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsRateLimited reports whether the backend rejected the request for
// rate limiting (HTTP 429).
func (err *ProviderError) IsRateLimited() bool {
	return err.StatusCode == 429
}
