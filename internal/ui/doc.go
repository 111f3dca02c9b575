// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the interactive chat interface.
//
// The interface is a Bubble Tea program with three regions: a scrollable
// transcript viewport, a single-line input, and a status bar. Card context
// extracted from the reviewed card is shown above the transcript when
// enabled in the configuration.
//
// Streaming responses are batched through a StreamingBuffer and flushed
// into the viewport at a capped frame rate, so fast token streams render
// smoothly instead of forcing a repaint per token. Assistant replies are
// rendered as markdown once the stream completes.
package ui
