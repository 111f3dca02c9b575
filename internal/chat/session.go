// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/cardassist/internal/model"
	"github.com/jeranaias/cardassist/internal/provider"
	"github.com/jeranaias/cardassist/internal/stream"
)

// ErrEmptyMessage is returned by Send when the input is blank.
var ErrEmptyMessage = errors.New("empty message")

// cardContextPrefix introduces the card context in the system message
// sent with every request.
const cardContextPrefix = "Current card:\n"

// Settings is the per-request configuration snapshot. A SettingsSource
// is consulted on every Send so config changes apply to the next
// message without restarting the session.
type Settings struct {
	Provider     provider.Config
	SystemPrompt string
}

// SettingsSource supplies the current settings.
type SettingsSource func() Settings

// Recorder persists a finished transcript. Implementations must be
// safe for concurrent use.
type Recorder interface {
	Record(sessionID string, messages []model.Message) error
}

// ============================================================================
// SESSION
// ============================================================================

// Session holds one conversation. All methods are safe for concurrent
// use.
type Session struct {
	id       string
	client   *stream.Client
	source   SettingsSource
	recorder Recorder // may be nil

	mu          sync.Mutex
	messages    []model.Message
	cardContext string
	current     *stream.Stream
}

// NewSession creates a session with a fresh UUID. recorder may be nil
// when transcript persistence is not wanted.
func NewSession(client *stream.Client, source SettingsSource, recorder Recorder) *Session {
	return &Session{
		id:       uuid.NewString(),
		client:   client,
		source:   source,
		recorder: recorder,
	}
}

// ID returns the session's UUID.
func (s *Session) ID() string {
	return s.id
}

// Messages returns a copy of the transcript so far. Card-context and
// system-prompt messages are not part of the transcript; they are
// injected per request.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// CardContext returns the current card context.
func (s *Session) CardContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cardContext
}

// Streaming reports whether a stream is currently in flight.
func (s *Session) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// ============================================================================
// CARD LIFECYCLE
// ============================================================================

// OnNewCard resets the conversation for a newly shown card. Any
// in-flight stream is cancelled and joined first.
func (s *Session) OnNewCard(cardContext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.messages = nil
	s.cardContext = cardContext
}

// OnAnswerShown swaps the card context for the answer-side extraction,
// keeping the conversation.
func (s *Session) OnAnswerShown(cardContext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cardContext = cardContext
}

// Cancel aborts any in-flight stream. It is a no-op when idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Cleanup cancels any stream and clears all session state. The session
// remains usable afterwards.
func (s *Session) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.messages = nil
	s.cardContext = ""
}

// cancelLocked cancels and joins the current stream. Callers hold s.mu.
func (s *Session) cancelLocked() {
	if s.current == nil {
		return
	}
	cur := s.current
	s.current = nil
	cur.Cancel()
	cur.Wait()
}

// ============================================================================
// SEND
// ============================================================================

// Send appends text as a user message and starts a streaming reply.
// Any previous stream is cancelled and joined first. Events arrive in
// order on the returned channel, which closes after the terminal event
// (or without one if the stream is cancelled). On Completed the
// assistant reply is appended to the transcript and recorded.
func (s *Session) Send(ctx context.Context, text string) (<-chan stream.Event, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	s.cancelLocked()

	s.messages = append(s.messages, model.NewUserMessage(text))
	settings := s.source()
	request := s.buildRequestLocked(settings)

	st := s.client.Chat(ctx, settings.Provider, request)
	s.current = st
	s.mu.Unlock()

	out := make(chan stream.Event, 64)
	go s.pump(st, out)
	return out, nil
}

// buildRequestLocked assembles the wire message list: optional system
// prompt, optional card-context system message, then the transcript.
// Callers hold s.mu.
func (s *Session) buildRequestLocked(settings Settings) []model.Message {
	request := make([]model.Message, 0, len(s.messages)+2)
	if settings.SystemPrompt != "" {
		request = append(request, model.NewSystemMessage(settings.SystemPrompt))
	}
	if s.cardContext != "" {
		request = append(request, model.NewSystemMessage(cardContextPrefix+s.cardContext))
	}
	return append(request, s.messages...)
}

// pump forwards stream events to out, folding the terminal event into
// session state.
func (s *Session) pump(st *stream.Stream, out chan<- stream.Event) {
	defer close(out)

	for ev := range st.Events() {
		if ev.Kind == stream.EventCompleted {
			s.finishCompleted(st, ev.Text)
		} else if ev.Kind == stream.EventFailed {
			s.clearCurrent(st)
		}
		out <- ev
	}

	st.Wait()
	s.clearCurrent(st)
}

// finishCompleted appends the assistant reply and records the
// transcript. Empty replies are not appended, matching the behaviour
// of a stream that produced no content.
func (s *Session) finishCompleted(st *stream.Stream, full string) {
	s.mu.Lock()
	if full != "" {
		s.messages = append(s.messages, model.NewAssistantMessage(full))
	}
	if s.current == st {
		s.current = nil
	}
	snapshot := make([]model.Message, len(s.messages))
	copy(snapshot, s.messages)
	s.mu.Unlock()

	if s.recorder != nil && full != "" {
		if err := s.recorder.Record(s.id, snapshot); err != nil {
			log.Printf("chat: recording transcript: %v", err)
		}
	}
}

// clearCurrent drops the in-flight marker if st is still current.
func (s *Session) clearCurrent(st *stream.Stream) {
	s.mu.Lock()
	if s.current == st {
		s.current = nil
	}
	s.mu.Unlock()
}
