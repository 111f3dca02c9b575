// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the streaming chat-completions client.
//
// A call to Client.Chat returns a Stream handle immediately; a
// background goroutine performs the HTTP request and parses the SSE
// response, publishing Events on a channel. Every stream terminates
// with exactly one terminal event — Completed or Failed — unless it is
// cancelled, in which case the channel closes with no terminal event.
//
// # Event Flow
//
//	Chunk*  (zero or more content deltas)
//	Completed | Failed  (exactly one, unless cancelled)
//
// Failed events carry user-facing messages, not Go error strings: DNS
// failures become "No internet connection.", timeouts become "Request
// timed out.", and HTTP errors surface whatever message the provider
// embedded in the response body.
//
// # Stalled Connections
//
// Response-header arrival and per-read progress are both bounded by
// ReadTimeout. A watchdog timer is re-armed after every line read; if
// the server stops sending mid-stream the watchdog cancels the request
// and the stream fails with the timeout message.
package stream
