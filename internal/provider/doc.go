// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider normalises the three supported LLM backends behind
// one request/response shape.
//
// All three backends — OpenRouter, a local Ollama server, and Gemini's
// OpenAI-compatible surface — speak the chat-completions wire format,
// so the differences reduce to endpoint URLs, auth headers, and the
// model-listing response shape. Each is captured by an Adapter; the
// streaming client and the connectivity probes are written once against
// that interface.
//
// # Key Types
//
//   - Provider: backend selector (openrouter, ollama, gemini)
//   - Config: per-request provider configuration, passed by value
//   - Adapter: request builder for one backend
//
// # Probes
//
// ListModels and TestConnection are best-effort conveniences for the
// host's settings UI. They never return an error: ListModels resolves
// every failure to an empty list, TestConnection to (false, message).
package provider
