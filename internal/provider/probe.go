// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/cardassist/internal/model"
)

// Probe timeouts. Probes run on a settings screen, so they stay short.
const (
	listModelsTimeout = 10 * time.Second
	testChatTimeout   = 15 * time.Second
)

// errorBodyPreviewLen caps how much of an unstructured error body is
// surfaced to the user.
const errorBodyPreviewLen = 200

// ============================================================================
// ListModels
// ============================================================================

// ListModels fetches the models available from the configured provider,
// sorted ascending. Any failure — bad config, network error, non-2xx
// status, malformed body — resolves to an empty list so the caller can
// fall back to manual model entry.
func ListModels(ctx context.Context, cfg Config) []string {
	ad, err := ForProvider(cfg.Provider)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ad.ModelsURL(cfg), nil)
	if err != nil {
		return nil
	}
	ad.SetHeaders(cfg, req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	models, err := ad.ParseModels(body)
	if err != nil {
		return nil
	}
	sort.Strings(models)
	return models
}

// ============================================================================
// TestConnection
// ============================================================================

// TestConnection verifies that the configured provider is reachable and
// authenticated. When cfg.Model is set it issues a one-token chat
// completion against that model; otherwise it falls back to listing
// models. The returned message is user-facing.
func TestConnection(ctx context.Context, cfg Config) (bool, string) {
	// Credential checks happen before any I/O.
	switch cfg.Provider {
	case ProviderOpenRouter:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return false, "API key is empty"
		}
	case ProviderGemini:
		if strings.TrimSpace(cfg.GeminiKey) == "" {
			return false, "API key is empty"
		}
	}

	ad, err := ForProvider(cfg.Provider)
	if err != nil {
		return false, "Connection failed: " + err.Error()
	}

	if cfg.Model != "" {
		return testChat(ctx, ad, cfg)
	}
	return testListModels(ctx, ad, cfg)
}

// testChat sends a minimal non-streaming completion to prove the model
// itself responds.
func testChat(ctx context.Context, ad Adapter, cfg Config) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, testChatTimeout)
	defer cancel()

	payload := ChatRequest{
		Model:       cfg.Model,
		Messages:    []model.Message{model.NewUserMessage("Hi")},
		MaxTokens:   1,
		Temperature: 0,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, "Connection failed: " + err.Error()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ad.ChatURL(cfg), bytes.NewReader(body))
	if err != nil {
		return false, "Connection failed: " + err.Error()
	}
	ad.SetHeaders(cfg, req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, probeErrorMessage(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, APIErrorMessage(resp.StatusCode, raw)
	}
	return true, fmt.Sprintf("Connected — %s is working", cfg.Model)
}

// testListModels proves reachability without naming a model.
func testListModels(ctx context.Context, ad Adapter, cfg Config) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ad.ModelsURL(cfg), nil)
	if err != nil {
		return false, "Connection failed: " + err.Error()
	}
	ad.SetHeaders(cfg, req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, probeErrorMessage(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, APIErrorMessage(resp.StatusCode, raw)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, "Connection failed: " + err.Error()
	}
	models, err := ad.ParseModels(body)
	if err != nil {
		return false, "Connection failed: " + err.Error()
	}
	return true, fmt.Sprintf("Connected — %d model(s) available", len(models))
}

// probeErrorMessage renders a transport-level probe failure.
func probeErrorMessage(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Connection timed out"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "Connection timed out"
		}
		return "Connection failed: " + urlErr.Err.Error()
	}
	return "Connection failed: " + err.Error()
}

// ============================================================================
// Error Body Parsing
// ============================================================================

// APIErrorMessage extracts a human-readable message from an HTTP error
// response. It understands the OpenAI-style {"error":{"message":...}}
// envelope and the flat {"message":...} variant; anything else falls
// back to a truncated body preview, or the bare status code when the
// body is empty or binary.
func APIErrorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if envelope.Error.Message != "" {
				return fmt.Sprintf("%s (%d)", envelope.Error.Message, status)
			}
			if envelope.Message != "" {
				return fmt.Sprintf("%s (%d)", envelope.Message, status)
			}
		}
		preview := string(trimmed)
		if len([]rune(preview)) > errorBodyPreviewLen {
			preview = string([]rune(preview)[:errorBodyPreviewLen])
		}
		return fmt.Sprintf("HTTP %d: %s", status, preview)
	}
	return fmt.Sprintf("HTTP %d", status)
}
