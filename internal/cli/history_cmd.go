// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Saved transcript management.
//
// Command: history [list|show|search|export|clear]
//
// Examples:
//   cardassist history
//   cardassist history show 3f2a...
//   cardassist history search mitochondria
//   cardassist history export 3f2a... --format json
//   cardassist history clear --confirm

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/cardassist/internal/history"
	"github.com/jeranaias/cardassist/internal/util"
)

// HandleHistory dispatches the history subcommands.
func HandleHistory(args []string) {
	parser := NewArgParser(args)

	store, err := history.NewStore()
	if err != nil {
		fail("history: %v", err)
	}

	switch parser.Subcommand() {
	case "", "list":
		historyList(store)
	case "show":
		historyShow(store, parser.Positional(1))
	case "search":
		historySearch(store, strings.Join(parser.PositionalFrom(1), " "))
	case "export":
		historyExport(store, parser.Positional(1), parser.FlagOrDefault("format", "md"))
	case "clear":
		historyClear(store, parser.BoolFlag("confirm"))
	default:
		fail("unknown history subcommand %q (want list, show, search, export, or clear)", parser.Subcommand())
	}
}

func historyList(store *history.Store) {
	metas, err := store.List()
	if err != nil {
		fail("history: %v", err)
	}
	printMetas(metas)
}

func historyShow(store *history.Store, id string) {
	if id == "" {
		fail("usage: cardassist history show ID")
	}
	tr, err := store.Load(id)
	if err != nil {
		fail("history: %v", err)
	}

	fmt.Println(TitleStyle.Render(tr.Summary))
	fmt.Println(DimStyle.Render(fmt.Sprintf("%s · %s", tr.ID, tr.CreatedAt.Format("2006-01-02 15:04"))))
	for _, msg := range tr.Messages {
		fmt.Printf("\n%s\n%s\n", LabelStyle.Render(msg.Role.DisplayName()+":"), msg.Content)
	}
}

func historySearch(store *history.Store, query string) {
	if query == "" {
		fail("usage: cardassist history search QUERY")
	}
	metas, err := store.SearchMessages(query)
	if err != nil {
		fail("history: %v", err)
	}
	printMetas(metas)
}

func historyExport(store *history.Store, id, format string) {
	if id == "" {
		fail("usage: cardassist history export ID [--format md|json]")
	}
	tr, err := store.Load(id)
	if err != nil {
		fail("history: %v", err)
	}

	switch format {
	case "md", "markdown":
		fmt.Print(tr.ExportMarkdown())
	case "json":
		data, err := tr.ExportJSON()
		if err != nil {
			fail("history: %v", err)
		}
		os.Stdout.Write(data)
		fmt.Println()
	default:
		fail("unknown export format %q (want md or json)", format)
	}
}

func historyClear(store *history.Store, confirmed bool) {
	if !confirmed {
		fail("refusing to delete all transcripts without --confirm")
	}
	if err := store.Clear(); err != nil {
		fail("history: %v", err)
	}
	fmt.Println(SuccessStyle.Render("All transcripts deleted."))
}

// printMetas renders a transcript list as a table.
func printMetas(metas []history.TranscriptMeta) {
	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No transcripts found."))
		return
	}

	fmt.Println(TitleStyle.Render("Transcripts"))
	for _, m := range metas {
		id := m.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("%s  %s  %2d msg  %s\n",
			DimStyle.Render(id),
			m.UpdatedAt.Format("2006-01-02 15:04"),
			m.MessageCount,
			util.TruncateWidth(m.Preview, 48))
	}
}
