// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/cardassist/internal/chat"
	"github.com/jeranaias/cardassist/internal/stream"
)

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd starts a streaming reply for text.
func sendCmd(session *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		events, err := session.Send(context.Background(), text)
		if err != nil {
			return sendFailedMsg{err: err}
		}
		return streamStartedMsg{events: events}
	}
}

// waitEventCmd reads the next event from the active stream.
func waitEventCmd(events <-chan stream.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{events: events}
		}
		return streamEventMsg{event: ev, events: events}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case streamStartedMsg:
		m.state = StateStreaming
		m.events = msg.events
		m.buffer.Reset()
		m.partial = ""
		m.errText = ""
		m.statusMsg = ""
		m.refreshViewport()
		return m, tea.Batch(waitEventCmd(msg.events), streamTickCmd(), m.spinner.Tick)

	case streamEventMsg:
		return m.handleStreamEvent(msg)

	case streamClosedMsg:
		if msg.events != m.events {
			return m, nil
		}
		// Closed without a terminal event: the stream was cancelled.
		if m.state == StateStreaming {
			m.finishStream()
			m.statusMsg = "Cancelled"
		}
		m.events = nil
		return m, nil

	case streamTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		if content, ok := m.buffer.Flush(); ok {
			m.partial += content
			m.refreshViewport()
		}
		return m, streamTickCmd()

	case sendFailedMsg:
		if !errors.Is(msg.err, chat.ErrEmptyMessage) {
			m.errText = msg.err.Error()
		}
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.statusMsg = "Configuration reloaded"
		return m, nil
	}

	return m, nil
}

// handleResize recomputes the layout for a new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.viewport.Width = msg.Width
	m.viewport.Height = m.viewportHeight()
	m.input.Width = msg.Width - 4

	m.renderer = newRenderer(msg.Width - 2)
	m.refreshViewport()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.session.Cancel()
		return m, tea.Quit

	case "esc":
		if m.state == StateStreaming {
			m.session.Cancel()
			return m, nil
		}
		return m, tea.Quit

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, sendCmd(m.session, text)

	case "ctrl+n":
		// Start over on the same card.
		m.session.OnNewCard(m.session.CardContext())
		m.partial = ""
		m.buffer.Reset()
		m.errText = ""
		m.statusMsg = "New conversation"
		m.state = StateReady
		m.refreshViewport()
		return m, nil

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleStreamEvent folds one stream event into the model.
func (m Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if msg.events != m.events {
		// Stale event from a superseded stream.
		return m, nil
	}

	switch msg.event.Kind {
	case stream.EventChunk:
		m.buffer.Write(msg.event.Text)
		return m, waitEventCmd(msg.events)

	case stream.EventCompleted:
		m.finishStream()
		return m, waitEventCmd(msg.events)

	case stream.EventFailed:
		m.finishStream()
		m.errText = msg.event.Message
		return m, waitEventCmd(msg.events)
	}

	return m, waitEventCmd(msg.events)
}

// finishStream drops live streaming state and re-renders the transcript
// from the session, which holds the authoritative message list.
func (m *Model) finishStream() {
	m.buffer.Reset()
	m.partial = ""
	m.state = StateReady
	m.refreshViewport()
}
