// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

// ============================================================================
// EVENT TYPES
// ============================================================================

// EventKind discriminates the events published on a Stream.
type EventKind int

const (
	// EventChunk carries one content delta in Text.
	EventChunk EventKind = iota
	// EventCompleted carries the full accumulated reply in Text.
	EventCompleted
	// EventFailed carries a user-facing failure message in Message.
	EventFailed
)

// String returns the event kind name for logs and test output.
func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one item published on Stream.Events.
type Event struct {
	Kind EventKind

	// Text holds the delta for Chunk events and the full reply for
	// Completed events.
	Text string

	// Message holds the user-facing description for Failed events.
	Message string
}
