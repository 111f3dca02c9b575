// cardassist - chat with an LLM about the flashcard you are reviewing.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/cardassist/internal/cardtext"
	"github.com/jeranaias/cardassist/internal/chat"
	"github.com/jeranaias/cardassist/internal/cli"
	"github.com/jeranaias/cardassist/internal/config"
	"github.com/jeranaias/cardassist/internal/history"
	"github.com/jeranaias/cardassist/internal/stream"
	"github.com/jeranaias/cardassist/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		runChat(args)
	case cli.CmdModels:
		cli.HandleModels(args)
	case cli.CmdTest:
		cli.HandleTest(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdHistory:
		cli.HandleHistory(args)
	case cli.CmdClean:
		cli.HandleClean(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp(args)
	default:
		cli.HandleHelp(args)
	}
}

// =============================================================================
// CHAT
// =============================================================================

// configHolder shares the live configuration between the settings
// source (read on every send) and the file watcher (writes on reload).
type configHolder struct {
	mu  sync.RWMutex
	cfg *config.Config
}

func (h *configHolder) Get() *config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

func (h *configHolder) Set(cfg *config.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
}

// runChat starts the interactive chat interface.
//
// Flags:
//
//	--card FILE    load card fields from a JSON file as context
//	--answer       treat the card's answer side as shown
//	--no-history   do not persist transcripts
func runChat(args []string) {
	parser := cli.NewArgParser(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	holder := &configHolder{cfg: cfg}

	var recorder chat.Recorder
	if !parser.BoolFlag("no-history") {
		store, err := history.NewStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: transcript history disabled: %v\n", err)
		} else {
			recorder = store
		}
	}

	client := stream.NewClient()
	session := chat.NewSession(client, func() chat.Settings {
		c := holder.Get()
		return chat.Settings{
			Provider:     c.ProviderConfig(),
			SystemPrompt: c.SystemPrompt,
		}
	}, recorder)
	defer session.Cleanup()

	if path := parser.Flag("card"); path != "" {
		card, err := cli.LoadCard(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		answerShown := card.AnswerShown || parser.BoolFlag("answer")
		session.OnNewCard(cardtext.ExtractContext(card.Fields, answerShown))
	}

	p := tea.NewProgram(
		ui.New(session, cfg),
		tea.WithAltScreen(),
	)

	// Config edits apply to the next message without a restart.
	if watcher := watchConfig(holder, p); watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running cardassist: %v\n", err)
		os.Exit(1)
	}
}

// watchConfig reloads the configuration file while the interface runs.
// Returns nil when no config file exists or the watcher cannot start.
func watchConfig(holder *configHolder, p *tea.Program) *config.Watcher {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if jsonPath, jerr := config.ConfigPathJSON(); jerr == nil {
			if _, serr := os.Stat(jsonPath); serr == nil {
				path = jsonPath
			} else {
				return nil
			}
		} else {
			return nil
		}
	}

	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		holder.Set(cfg)
		p.Send(ui.ConfigReloadedMsg{Config: cfg})
	})
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}
