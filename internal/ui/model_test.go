// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/cardassist/internal/chat"
	"github.com/jeranaias/cardassist/internal/config"
	"github.com/jeranaias/cardassist/internal/stream"
)

func testModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	session := chat.NewSession(stream.NewClient(), func() chat.Settings {
		return chat.Settings{Provider: cfg.ProviderConfig()}
	}, nil)
	return New(session, cfg)
}

func updated(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func TestResizeMakesModelReady(t *testing.T) {
	m := testModel(t)
	if m.ready {
		t.Fatal("model should not be ready before the first resize")
	}

	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if !m.ready {
		t.Error("model should be ready after a resize")
	}
	if m.viewport.Width != 100 {
		t.Errorf("viewport width = %d, want 100", m.viewport.Width)
	}
	if m.viewport.Height <= 0 || m.viewport.Height >= 30 {
		t.Errorf("viewport height = %d, want between 1 and 29", m.viewport.Height)
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := testModel(t)
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q before resize", got)
	}
}

func TestStreamStartedEntersStreamingState(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	ch := make(chan stream.Event)
	m, cmd := updated(t, m, streamStartedMsg{events: ch})

	if !m.Streaming() {
		t.Error("model should be streaming after streamStartedMsg")
	}
	if cmd == nil {
		t.Error("streamStartedMsg should schedule follow-up commands")
	}
}

func TestChunkEventBuffersToken(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	ch := make(chan stream.Event)
	m, _ = updated(t, m, streamStartedMsg{events: ch})
	m, _ = updated(t, m, streamEventMsg{
		event:  stream.Event{Kind: stream.EventChunk, Text: "hola"},
		events: ch,
	})

	if pending := m.buffer.Pending(); pending != 1 {
		t.Errorf("buffer pending = %d, want 1", pending)
	}
}

func TestStaleStreamEventIgnored(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	current := make(chan stream.Event)
	stale := make(chan stream.Event)
	m, _ = updated(t, m, streamStartedMsg{events: current})
	m, _ = updated(t, m, streamEventMsg{
		event:  stream.Event{Kind: stream.EventChunk, Text: "old"},
		events: stale,
	})

	if pending := m.buffer.Pending(); pending != 0 {
		t.Errorf("stale event buffered %d tokens, want 0", pending)
	}
}

func TestFailedEventShowsError(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	ch := make(chan stream.Event)
	m, _ = updated(t, m, streamStartedMsg{events: ch})
	m, _ = updated(t, m, streamEventMsg{
		event:  stream.Event{Kind: stream.EventFailed, Message: "Request timed out."},
		events: ch,
	})

	if m.Streaming() {
		t.Error("model should leave streaming state on failure")
	}
	if m.errText != "Request timed out." {
		t.Errorf("errText = %q", m.errText)
	}
	if !strings.Contains(m.View(), "Request timed out.") {
		t.Error("error message should appear in the view")
	}
}

func TestClosedChannelAfterCancelReturnsToReady(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	ch := make(chan stream.Event)
	m, _ = updated(t, m, streamStartedMsg{events: ch})
	m, _ = updated(t, m, streamClosedMsg{events: ch})

	if m.Streaming() {
		t.Error("model should be ready after the channel closes")
	}
	if m.statusMsg != "Cancelled" {
		t.Errorf("statusMsg = %q, want Cancelled", m.statusMsg)
	}
}

func TestEnterOnEmptyInputDoesNothing(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m, cmd := updated(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("empty input should not produce a command")
	}
	if m.Streaming() {
		t.Error("empty input should not start streaming")
	}
}

func TestConfigReloadUpdatesModel(t *testing.T) {
	m := testModel(t)
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	next := config.Default()
	next.Provider = "ollama"
	next.OllamaModel = "llama3.2"
	m, _ = updated(t, m, ConfigReloadedMsg{Config: next})

	if !strings.Contains(m.renderHeader(), "llama3.2") {
		t.Error("header should show the reloaded model")
	}
	if m.statusMsg != "Configuration reloaded" {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestCardContextHiddenWhenDisabled(t *testing.T) {
	m := testModel(t)
	m.session.OnNewCard("Front: ¿Qué hora es?")
	m, _ = updated(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	if m.renderCardContext() == "" {
		t.Error("card context should render when enabled")
	}

	m.cfg.UI.ShowContext = false
	if m.renderCardContext() != "" {
		t.Error("card context should be hidden when disabled")
	}
}
