// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"fmt"
	"strings"

	"github.com/jeranaias/cardassist/internal/model"
)

// ============================================================================
// Provider Enum
// ============================================================================

// Provider identifies one of the supported chat backends.
type Provider string

const (
	// ProviderOpenRouter routes through openrouter.ai.
	ProviderOpenRouter Provider = "openrouter"
	// ProviderOllama talks to a local Ollama server.
	ProviderOllama Provider = "ollama"
	// ProviderGemini uses Gemini's OpenAI-compatible endpoint.
	ProviderGemini Provider = "gemini"
)

// Valid reports whether p names a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenRouter, ProviderOllama, ProviderGemini:
		return true
	}
	return false
}

// DisplayName returns the human-facing provider name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderOllama:
		return "Ollama"
	case ProviderGemini:
		return "Gemini"
	default:
		return string(p)
	}
}

// ============================================================================
// Config
// ============================================================================

// Default endpoints and request shape constants.
const (
	// DefaultOllamaURL is the stock local Ollama address.
	DefaultOllamaURL = "http://localhost:11434"

	openRouterBaseURL = "https://openrouter.ai/api/v1"
	geminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai"

	// Attribution headers sent with every OpenRouter request.
	refererURL = "https://github.com/anki-card-assistant"
	appTitle   = "Card Assistant"
)

// Config carries everything needed to issue a request against one
// provider. It is passed by value; callers may mutate their copy freely.
type Config struct {
	Provider    Provider
	APIKey      string // OpenRouter key
	GeminiKey   string // Gemini key
	BaseURL     string // Ollama server address
	Model       string
	MaxTokens   int
	Temperature float64
}

// Validate checks that the config can produce an authenticated request.
// It performs no I/O, so callers can fail fast before opening a stream.
func (c Config) Validate() error {
	if !c.Provider.Valid() {
		return fmt.Errorf("unknown provider %q", string(c.Provider))
	}
	switch c.Provider {
	case ProviderOpenRouter:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("OpenRouter API key not set")
		}
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiKey) == "" {
			return fmt.Errorf("Gemini API key not set")
		}
	}
	if c.Model == "" {
		return fmt.Errorf("no model selected")
	}
	return nil
}

// ollamaBase returns the Ollama base URL with any trailing slash removed,
// falling back to the default address when unset.
func (c Config) ollamaBase() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultOllamaURL
	}
	return base
}

// ============================================================================
// Wire Types
// ============================================================================

// ChatRequest is the OpenAI-compatible chat-completions request body.
// All three providers accept this shape.
type ChatRequest struct {
	Model       string          `json:"model"`
	Messages    []model.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
}

// ChatChunk is one SSE payload from a streaming chat-completions
// response. Only the delta content is consumed.
type ChatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Content returns the text carried by the chunk, if any.
func (c ChatChunk) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}
