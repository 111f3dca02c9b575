// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// clean.go - Preview card-context extraction.
//
// Command: clean FILE
//
// Reads a card file (JSON) and prints the context exactly as it would
// be injected into the chat, after markup/media stripping and caps.
//
// Card file shape:
//
//	{
//	  "fields": [
//	    {"name": "Front", "value": "<b>corazón</b>"},
//	    {"name": "Back", "value": "heart [sound:a.mp3]"}
//	  ],
//	  "answer_shown": false
//	}
//
// Examples:
//   cardassist clean card.json
//   cardassist clean card.json --answer

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/cardassist/internal/cardtext"
)

// CardFile is the on-disk shape accepted by clean and chat --card.
type CardFile struct {
	Fields      []cardtext.Field `json:"fields"`
	AnswerShown bool             `json:"answer_shown"`
}

// LoadCard reads and parses a card file.
func LoadCard(path string) (*CardFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading card file: %w", err)
	}
	var card CardFile
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("parsing card file: %w", err)
	}
	return &card, nil
}

// HandleClean prints the extracted context for a card file.
func HandleClean(args []string) {
	parser := NewArgParser(args)

	path := parser.Positional(0)
	if path == "" {
		fail("usage: cardassist clean FILE [--answer]")
	}

	card, err := LoadCard(path)
	if err != nil {
		fail("%v", err)
	}

	answerShown := card.AnswerShown || parser.BoolFlag("answer")
	fmt.Println(cardtext.ExtractContext(card.Fields, answerShown))
}
