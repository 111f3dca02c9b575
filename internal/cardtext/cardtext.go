// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cardtext

import (
	"html"
	"regexp"
	"strings"
)

// =============================================================================
// PATTERNS
// =============================================================================

// Patterns for content that should be stripped or rewritten before the
// field text is handed to an LLM.
var (
	soundRe    = regexp.MustCompile(`\[sound:[^\]]+\]`)
	imgRe      = regexp.MustCompile(`(?i)<img[^>]*>`)
	mediaTagRe = regexp.MustCompile(`(?i)<(?:audio|video|source|object|embed)[^>]*>`)
	clozeRe    = regexp.MustCompile(`\{\{c\d+::(.*?)(?:::[^}]*)?\}\}`)
	htmlBrRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlDivRe  = regexp.MustCompile(`(?i)</?div[^>]*>`)
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)
	latexRe    = regexp.MustCompile(`(?is)\[latex\].*?\[/latex\]`)
	mathJaxRe  = regexp.MustCompile(`(?s)\\\(.*?\\\)|\\\[.*?\\\]`)
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// Limits to avoid sending excessive content to the API.
const (
	// MaxFieldChars caps a single cleaned field.
	MaxFieldChars = 2000
	// MaxTotalChars caps the assembled card context.
	MaxTotalChars = 6000
)

// formulaPlaceholder replaces LaTeX and MathJax blocks, which would
// otherwise confuse the model more than help it.
const formulaPlaceholder = "[formula]"

// =============================================================================
// FIELD TYPE
// =============================================================================

// Field is one named field of a card, with its raw (possibly HTML) value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// =============================================================================
// CLEANING
// =============================================================================

// CleanField converts a raw card field value into clean, readable text.
//
// Cloze deletions are resolved to their answer text (hints discarded),
// media references and markup are stripped, HTML entities are decoded,
// and whitespace is normalised. Fields longer than MaxFieldChars are
// cut at the limit with a literal "..." appended, even mid-word.
func CleanField(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw

	// Resolve cloze deletions: {{c1::answer::hint}} -> answer
	text = clozeRe.ReplaceAllString(text, "${1}")

	// Remove media references
	text = soundRe.ReplaceAllString(text, "")
	text = imgRe.ReplaceAllString(text, "")
	text = mediaTagRe.ReplaceAllString(text, "")

	// Replace LaTeX / MathJax with a placeholder
	text = latexRe.ReplaceAllString(text, formulaPlaceholder)
	text = mathJaxRe.ReplaceAllString(text, formulaPlaceholder)

	// Convert block-level HTML to newlines before stripping tags
	text = htmlBrRe.ReplaceAllString(text, "\n")
	text = htmlDivRe.ReplaceAllString(text, "\n")
	text = htmlTagRe.ReplaceAllString(text, "")

	// Decode HTML entities (&amp; -> &, &#x4e2d; -> 中, etc.)
	text = html.UnescapeString(text)

	// Normalise whitespace
	text = spacesRe.ReplaceAllString(text, " ")
	text = blankRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	// Truncate overly long fields
	if runes := []rune(text); len(runes) > MaxFieldChars {
		text = string(runes[:MaxFieldChars]) + "..."
	}

	return text
}

// =============================================================================
// CONTEXT ASSEMBLY
// =============================================================================

// ExtractContext builds a text summary of a card's fields for the LLM.
//
// Fields that clean to nothing are skipped. When no field produces any
// text the result is the empty string, and the caller must omit the
// card context from the request entirely. The answerShown flag selects
// the header so the model knows which side of the card the user sees.
func ExtractContext(fields []Field, answerShown bool) string {
	if len(fields) == 0 {
		return ""
	}

	var parts []string
	for _, f := range fields {
		if clean := CleanField(f.Value); clean != "" {
			parts = append(parts, f.Name+": "+clean)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	side := "question side"
	if answerShown {
		side = "answer shown"
	}
	header := "[Card – " + side + "]"

	context := header + "\n" + strings.Join(parts, "\n")

	// Hard cap on total context length
	if runes := []rune(context); len(runes) > MaxTotalChars {
		context = string(runes[:MaxTotalChars]) + "\n..."
	}

	return context
}
