// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ============================================================================
// Adapter Interface
// ============================================================================

// Adapter maps one provider onto the shared chat-completions wire
// format. Implementations are stateless.
type Adapter interface {
	// Provider returns the backend this adapter serves.
	Provider() Provider

	// ChatURL returns the streaming chat-completions endpoint.
	ChatURL(cfg Config) string

	// ModelsURL returns the model-listing endpoint.
	ModelsURL(cfg Config) string

	// SetHeaders applies auth and attribution headers to req.
	SetHeaders(cfg Config, req *http.Request)

	// ParseModels extracts model IDs from a model-listing response body.
	ParseModels(body []byte) ([]string, error)
}

// ForProvider returns the adapter for p, or an error for unknown
// providers.
func ForProvider(p Provider) (Adapter, error) {
	switch p {
	case ProviderOpenRouter:
		return openRouterAdapter{}, nil
	case ProviderOllama:
		return ollamaAdapter{}, nil
	case ProviderGemini:
		return geminiAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", string(p))
	}
}

// openAIModelList is the {"data":[{"id":...}]} listing shape shared by
// OpenRouter and Gemini.
type openAIModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ============================================================================
// OpenRouter
// ============================================================================

type openRouterAdapter struct{}

func (openRouterAdapter) Provider() Provider { return ProviderOpenRouter }

func (openRouterAdapter) ChatURL(Config) string {
	return openRouterBaseURL + "/chat/completions"
}

func (openRouterAdapter) ModelsURL(Config) string {
	return openRouterBaseURL + "/models"
}

func (openRouterAdapter) SetHeaders(cfg Config, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	// OpenRouter uses these for app attribution on its dashboard.
	req.Header.Set("HTTP-Referer", refererURL)
	req.Header.Set("X-Title", appTitle)
}

func (openRouterAdapter) ParseModels(body []byte) ([]string, error) {
	var list openAIModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing model list: %w", err)
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// ============================================================================
// Ollama
// ============================================================================

type ollamaAdapter struct{}

func (ollamaAdapter) Provider() Provider { return ProviderOllama }

func (ollamaAdapter) ChatURL(cfg Config) string {
	return cfg.ollamaBase() + "/v1/chat/completions"
}

func (ollamaAdapter) ModelsURL(cfg Config) string {
	return cfg.ollamaBase() + "/api/tags"
}

func (ollamaAdapter) SetHeaders(_ Config, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
}

func (ollamaAdapter) ParseModels(body []byte) ([]string, error) {
	var list struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing model list: %w", err)
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// ============================================================================
// Gemini
// ============================================================================

// geminiAdapter talks to Gemini through its OpenAI-compatible surface,
// which keeps the SSE delta shape identical across all three backends.
type geminiAdapter struct{}

func (geminiAdapter) Provider() Provider { return ProviderGemini }

func (geminiAdapter) ChatURL(Config) string {
	return geminiBaseURL + "/chat/completions"
}

func (geminiAdapter) ModelsURL(Config) string {
	return geminiBaseURL + "/models"
}

func (geminiAdapter) SetHeaders(cfg Config, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.GeminiKey)
}

func (geminiAdapter) ParseModels(body []byte) ([]string, error) {
	var list openAIModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing model list: %w", err)
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		// The compat endpoint prefixes IDs with "models/".
		id := strings.TrimPrefix(m.ID, "models/")
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
