// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cardtext extracts readable text from flashcard fields for use
// as LLM context.
//
// Card fields arrive as rich text: HTML markup, cloze deletions, media
// references (sound, images, video), and LaTeX. CleanField reduces a
// single field to plain text; ExtractContext assembles the cleaned
// fields of a whole card into one bounded summary.
//
// Both functions are pure. Malformed or empty input yields an empty
// string rather than an error, because a card with no usable text is an
// expected case, not a failure.
package cardtext
