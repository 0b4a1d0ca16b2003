// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultBaseURL is the OpenAI API endpoint. Any server implementing
// the chat completions wire format (OpenRouter, vLLM, Ollama,
// llama.cpp) works by overriding the base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// OpenAI implements [Provider] for the OpenAI Chat Completions API.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// OpenAIConfig configures an OpenAI provider.
type OpenAIConfig struct {
	// APIKey is sent as a bearer token. Required.
	APIKey string

	// BaseURL overrides DefaultBaseURL; no trailing slash.
	BaseURL string

	// HTTPClient overrides http.DefaultClient. Request deadlines
	// come from the caller's context, not from the client.
	HTTPClient *http.Client
}

// NewOpenAI creates a chat-completions provider.
func NewOpenAI(config OpenAIConfig) *OpenAI {
	if config.APIKey == "" {
		panic("llm: APIKey is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{httpClient: httpClient, baseURL: baseURL, apiKey: config.APIKey}
}

// Complete sends a non-streaming request and returns the first
// choice's message content.
func (provider *OpenAI) Complete(ctx context.Context, request Request) (*Response, error) {
	body, err := json.Marshal(toWireRequest(request))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost,
		provider.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+provider.apiKey)

	httpResponse, err := provider.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("llm/openai: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, readProviderError(httpResponse)
	}

	var wire wireResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("llm/openai: decoding response: %w", err)
	}
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("llm/openai: response contained no choices")
	}

	return &Response{
		Text:         wire.Choices[0].Message.Content,
		Model:        wire.Model,
		FinishReason: wire.Choices[0].FinishReason,
	}, nil
}

// Wire format for the chat completions endpoint.
type wireRequest struct {
	Model            string        `json:"model"`
	Messages         []wireMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	Temperature      *float64      `json:"temperature,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func toWireRequest(request Request) wireRequest {
	wire := wireRequest{
		Model:     request.Model,
		MaxTokens: request.MaxTokens,
	}
	if request.Temperature != 0 {
		wire.Temperature = &request.Temperature
	}
	if request.TopP != 0 {
		wire.TopP = &request.TopP
	}
	if request.PresencePenalty != 0 {
		wire.PresencePenalty = &request.PresencePenalty
	}
	if request.FrequencyPenalty != 0 {
		wire.FrequencyPenalty = &request.FrequencyPenalty
	}
	for _, message := range request.Messages {
		wire.Messages = append(wire.Messages, wireMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}
	return wire
}

// readProviderError parses the common error body format,
// {"error":{"type":"...","message":"..."}}; unparseable bodies fall
// back to the raw text.
func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wire struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Error.Message != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Type:       wire.Error.Type,
			Message:    wire.Error.Message,
		}
	}
	return &ProviderError{
		StatusCode: httpResponse.StatusCode,
		Message:    string(body),
	}
}
