// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists chat transcripts from review sessions.
//
// Each transcript is one JSON file under the store directory, written
// atomically so a crash never leaves a truncated file. Transcripts may
// contain card content, so files are created with 0600 permissions.
//
// The store caps the number of retained transcripts; the oldest are
// pruned on save once the cap is exceeded.
package history
