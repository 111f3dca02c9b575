// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/cardassist/internal/model"
	"github.com/jeranaias/cardassist/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the full interface. Layout is header, optional card
// context, transcript viewport, input and status bar; the viewport
// absorbs whatever height the fixed rows leave over.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	context := m.renderCardContext()
	input := m.renderInput()
	status := m.renderStatusBar()

	sections := make([]string, 0, 5)
	sections = append(sections, header)
	if context != "" {
		sections = append(sections, context)
	}
	sections = append(sections, m.viewport.View(), input, status)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewportHeight is the terminal height minus the fixed rows rendered
// around the transcript.
func (m Model) viewportHeight() int {
	fixed := 1 + lipgloss.Height(m.renderInput()) + 1
	if ctx := m.renderCardContext(); ctx != "" {
		fixed += lipgloss.Height(ctx)
	}
	h := m.height - fixed
	if h < 1 {
		h = 1
	}
	return h
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	detail := util.TruncateWidth(fmt.Sprintf("%s / %s",
		m.cfg.Provider, m.cfg.ActiveModel()), m.width-16)
	return m.theme.Header.Render("Card Assistant") + " " + m.theme.HeaderModel.Render(detail)
}

// renderCardContext shows the extracted card text above the transcript.
// Hidden when disabled in the configuration or when no card is loaded.
func (m Model) renderCardContext() string {
	if !m.cfg.UI.ShowContext {
		return ""
	}
	ctx := m.session.CardContext()
	if ctx == "" {
		return ""
	}
	// One preview line per card side header keeps the panel compact.
	first := ctx
	if i := strings.IndexByte(ctx, '\n'); i >= 0 {
		first = ctx[:i]
	}
	line := util.TruncateWidth(first, m.width-4)
	return m.theme.CardContext.Width(m.width - 2).Render(line)
}

func (m Model) renderInput() string {
	return m.theme.InputBorder.Width(m.width).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.state == StateStreaming:
		left = m.spinner.View() + " " + m.theme.StatusBusy.Render("streaming")
	case m.errText != "":
		left = m.theme.ErrorText.Render(util.TruncateWidth(m.errText, m.width/2))
	case m.statusMsg != "":
		left = m.theme.StatusBar.Render(m.statusMsg)
	default:
		left = m.theme.StatusReady.Render("ready")
	}

	shortcuts := strings.Join([]string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send"),
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" cancel"),
		m.theme.ShortcutKey.Render("ctrl+n") + m.theme.ShortcutDesc.Render(" new"),
		m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit"),
	}, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(shortcuts)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + shortcuts
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport rebuilds the viewport content from the session
// transcript plus any in-flight streamed text, then scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.Height = m.viewportHeight()
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	messages := m.session.Messages()
	if len(messages) == 0 && m.partial == "" && m.state != StateStreaming {
		return m.theme.StatusBar.Render("Ask a question about the current card.")
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.state == StateStreaming {
		b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
		b.WriteString("\n")
		if m.partial != "" {
			b.WriteString(m.partial)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderMessage(msg model.Message) string {
	label := msg.Role.DisplayName()
	switch msg.Role {
	case model.RoleUser:
		return m.theme.UserLabel.Render(label) + "\n" + msg.Content + "\n"
	case model.RoleAssistant:
		return m.theme.AssistantLabel.Render(label) + "\n" + m.renderMarkdown(msg.Content)
	default:
		return m.theme.SystemLabel.Render(label) + "\n" + msg.Content + "\n"
	}
}

// renderMarkdown formats assistant markdown for the terminal, falling
// back to the raw text when no renderer is available.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content + "\n"
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
