// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for cardassist.

package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdModels
	CmdTest
	CmdConfig
	CmdHistory
	CmdClean
	CmdVersion
	CmdHelp
)

const usageText = `cardassist - streaming LLM chat for flashcard review

Cardassist turns the card under review into context for an LLM chat:
card fields are cleaned of markup and media, capped, and injected as a
system message alongside your questions.

Usage:
  cardassist                       Start the review chat (default)
  cardassist chat [--card FILE]    Start the review chat with a card file
  cardassist models                List models for the configured provider
  cardassist test                  Probe the configured provider
  cardassist config [show|set|path]  Configuration management
  cardassist history [subcommand]  Saved transcript management
  cardassist clean FILE            Preview card-context extraction
  cardassist version               Show version
  cardassist help                  Show this help

History subcommands:
  list                 List saved transcripts (default)
  show ID              Print one transcript
  search QUERY         Search transcripts by message content
  export ID [--format md|json]  Export a transcript
  clear --confirm      Delete all transcripts

Providers:
  openrouter (default), ollama, gemini

Configuration:
  ~/.cardassist/config.toml, overridable via CARDASSIST_* env vars.

Examples:
  cardassist chat --card card.json
  cardassist models
  cardassist config set provider ollama
  cardassist history search mitochondria
`

// Parse parses os.Args and returns the command and its arguments.
func Parse() (Command, []string) {
	args := os.Args[1:]

	if len(args) == 0 {
		return CmdChat, nil
	}

	switch args[0] {
	case "chat":
		return CmdChat, args[1:]
	case "models", "model":
		return CmdModels, args[1:]
	case "test":
		return CmdTest, args[1:]
	case "config":
		return CmdConfig, args[1:]
	case "history", "sessions":
		return CmdHistory, args[1:]
	case "clean":
		return CmdClean, args[1:]
	case "version", "-v", "--version":
		return CmdVersion, args[1:]
	case "help", "-h", "--help":
		return CmdHelp, args[1:]
	default:
		// Unknown first arg: treat everything as chat flags.
		return CmdChat, args
	}
}

// HandleVersion prints version information.
func HandleVersion(args []string) {
	fmt.Printf("cardassist %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp(args []string) {
	fmt.Print(usageText)
}

// fail prints an error message and exits non-zero.
func fail(format string, a ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render(fmt.Sprintf(format, a...)))
	os.Exit(1)
}
