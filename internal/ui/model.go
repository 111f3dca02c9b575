// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/cardassist/internal/chat"
	"github.com/jeranaias/cardassist/internal/config"
	"github.com/jeranaias/cardassist/internal/stream"
)

// =============================================================================
// STATE
// =============================================================================

// State is the interface's top-level mode.
type State int

const (
	StateReady     State = iota // Waiting for input
	StateStreaming              // Receiving a response
)

// inputCharLimit bounds a single message.
const inputCharLimit = 4096

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	state State
	theme *Theme

	session *chat.Session
	cfg     *config.Config

	width  int
	height int
	ready  bool

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Streaming state. buffer batches incoming tokens; partial holds the
	// flushed-but-unfinished assistant text shown live in the viewport.
	// A plain string rather than a strings.Builder because Bubble Tea
	// copies the model by value on every update.
	partial string
	buffer  *StreamingBuffer
	events  <-chan stream.Event

	// renderer formats completed assistant replies as markdown. Nil when
	// initialization failed; content falls back to plain text.
	renderer *glamour.TermRenderer

	errText   string
	statusMsg string
}

// New creates the chat interface model.
func New(session *chat.Session, cfg *config.Config) Model {
	theme := NewTheme(cfg.UI.Theme)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about this card..."
	ti.CharLimit = inputCharLimit
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = theme.Spinner

	return Model{
		state:    StateReady,
		theme:    theme,
		session:  session,
		cfg:      cfg,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		buffer:   NewStreamingBuffer(),
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Streaming reports whether a response is in flight.
func (m Model) Streaming() bool {
	return m.state == StateStreaming
}

// newRenderer builds a markdown renderer wrapped to the given width.
// Returns nil on failure; callers fall back to plain text.
func newRenderer(wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}
