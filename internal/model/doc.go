// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the chat core.
//
// A conversation is an ordered slice of Messages, oldest first. The
// wire format matches the OpenAI-style chat completions shape used by
// every supported provider, so Messages marshal directly into request
// bodies.
package model
