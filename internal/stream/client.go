// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/cardassist/internal/model"
	"github.com/jeranaias/cardassist/internal/provider"
)

// ============================================================================
// CONSTANTS
// ============================================================================

// DefaultReadTimeout bounds both response-header arrival and the gap
// between consecutive SSE lines.
const DefaultReadTimeout = 60 * time.Second

// sseDataPrefix marks an SSE data line.
const sseDataPrefix = "data: "

// sseDoneSentinel terminates an OpenAI-compatible SSE stream.
const sseDoneSentinel = "[DONE]"

// eventBufferSize is the channel buffer for published events. Large
// enough that a briefly slow consumer never stalls the read loop.
const eventBufferSize = 64

// ============================================================================
// CLIENT
// ============================================================================

// Client issues streaming chat-completions requests. The zero value is
// not usable; construct with NewClient.
type Client struct {
	http        *http.Client
	readTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithReadTimeout overrides the per-read watchdog timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) { c.readTimeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a streaming client. The HTTP client carries no
// overall deadline; stream lifetime is bounded per read by the
// watchdog, not end to end.
func NewClient(opts ...Option) *Client {
	c := &Client{
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: c.readTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		}
	}
	return c
}

// ============================================================================
// STREAM HANDLE
// ============================================================================

// Stream is a handle on one in-flight chat completion.
type Stream struct {
	events chan Event
	done   chan struct{}

	cancelReq context.CancelFunc
	cancelled atomic.Bool
	stopped   chan struct{}
	stopOnce  sync.Once
}

// Events returns the channel of stream events. It is closed after the
// terminal event, or without one if the stream was cancelled.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Cancel aborts the stream. It is idempotent and safe to call from any
// goroutine. No events are published after Cancel returns, beyond
// those already buffered.
func (s *Stream) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.stopOnce.Do(func() { close(s.stopped) })
		s.cancelReq()
	}
}

// Wait blocks until the background goroutine has exited and the event
// channel is closed.
func (s *Stream) Wait() {
	<-s.done
}

// emit publishes ev, giving up if the stream is cancelled while the
// consumer is not draining. Reports whether the event was delivered.
func (s *Stream) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.stopped:
		return false
	}
}

// ============================================================================
// CHAT
// ============================================================================

// Chat starts a streaming chat completion against the configured
// provider. It never blocks: all failures, including config validation
// failures, surface as a single Failed event on the returned stream.
func (c *Client) Chat(ctx context.Context, cfg provider.Config, messages []model.Message) *Stream {
	reqCtx, cancel := context.WithCancel(ctx)
	s := &Stream{
		events:    make(chan Event, eventBufferSize),
		done:      make(chan struct{}),
		cancelReq: cancel,
		stopped:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.events)
		defer cancel()
		c.run(reqCtx, cfg, messages, s)
	}()

	return s
}

// run performs the request and drives the SSE read loop. It publishes
// at most one terminal event.
func (c *Client) run(ctx context.Context, cfg provider.Config, messages []model.Message, s *Stream) {
	if err := cfg.Validate(); err != nil {
		s.emit(Event{Kind: EventFailed, Message: err.Error()})
		return
	}

	ad, err := provider.ForProvider(cfg.Provider)
	if err != nil {
		s.emit(Event{Kind: EventFailed, Message: err.Error()})
		return
	}

	payload := provider.ChatRequest{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Stream:      true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.emit(Event{Kind: EventFailed, Message: "Connection error: " + err.Error()})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ad.ChatURL(cfg), bytes.NewReader(body))
	if err != nil {
		s.emit(Event{Kind: EventFailed, Message: "Connection error: " + err.Error()})
		return
	}
	ad.SetHeaders(cfg, req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The watchdog cancels the request context whenever the gap since
	// the last read exceeds the read timeout. timedOut distinguishes a
	// watchdog fire from a user cancel.
	var timedOut atomic.Bool
	watchdog := time.AfterFunc(c.readTimeout, func() {
		timedOut.Store(true)
		s.cancelReq()
	})
	defer watchdog.Stop()

	resp, err := c.http.Do(req)
	watchdog.Reset(c.readTimeout)
	if err != nil {
		c.finishError(s, err, &timedOut)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		s.emit(Event{Kind: EventFailed, Message: provider.APIErrorMessage(resp.StatusCode, raw)})
		return
	}

	c.readLoop(resp.Body, s, watchdog, &timedOut)
}

// readLoop consumes SSE lines until the done sentinel, EOF, an error,
// or cancellation.
func (c *Client) readLoop(body io.Reader, s *Stream, watchdog *time.Timer, timedOut *atomic.Bool) {
	reader := bufio.NewReader(body)
	var full strings.Builder

	for {
		if s.cancelled.Load() && !timedOut.Load() {
			// User cancel: close silently, no terminal event.
			return
		}

		line, err := reader.ReadString('\n')
		watchdog.Reset(c.readTimeout)

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if payload, ok := strings.CutPrefix(trimmed, sseDataPrefix); ok {
				if payload == sseDoneSentinel {
					s.emit(Event{Kind: EventCompleted, Text: full.String()})
					return
				}
				var chunk provider.ChatChunk
				// Unparsable payloads are skipped, matching the
				// tolerant behaviour providers expect of SSE clients.
				if jsonErr := json.Unmarshal([]byte(payload), &chunk); jsonErr == nil {
					if content := chunk.Content(); content != "" {
						full.WriteString(content)
						if !s.emit(Event{Kind: EventChunk, Text: content}) {
							return
						}
					}
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				s.emit(Event{Kind: EventCompleted, Text: full.String()})
				return
			}
			if s.cancelled.Load() && !timedOut.Load() {
				return
			}
			c.finishError(s, err, timedOut)
			return
		}
	}
}

// finishError maps a transport error to a Failed event, unless the
// stream was cancelled by the user.
func (c *Client) finishError(s *Stream, err error, timedOut *atomic.Bool) {
	if timedOut.Load() {
		s.emit(Event{Kind: EventFailed, Message: "Request timed out."})
		return
	}
	if s.cancelled.Load() {
		return
	}
	s.emit(Event{Kind: EventFailed, Message: failureMessage(err)})
}

// ============================================================================
// ERROR MAPPING
// ============================================================================

// failureMessage renders a transport error as a user-facing message.
func failureMessage(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "No internet connection."
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Request timed out."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out."
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Connection error: " + urlErr.Err.Error()
	}
	return "Connection error: " + err.Error()
}
