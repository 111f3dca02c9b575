// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/jeranaias/cardassist/internal/config"
	"github.com/jeranaias/cardassist/internal/stream"
)

// =============================================================================
// MESSAGES
// =============================================================================

// streamStartedMsg reports that a Send produced an event channel.
type streamStartedMsg struct {
	events <-chan stream.Event
}

// streamEventMsg carries one event from the active stream. The channel
// is included so the next read command targets the same stream.
type streamEventMsg struct {
	event  stream.Event
	events <-chan stream.Event
}

// streamClosedMsg reports that the event channel closed. A channel that
// closes without a terminal event means the stream was cancelled.
type streamClosedMsg struct {
	events <-chan stream.Event
}

// streamTickMsg drives buffer flushes during streaming.
type streamTickMsg struct {
	Time time.Time
}

// sendFailedMsg reports that Send itself returned an error.
type sendFailedMsg struct {
	err error
}

// ConfigReloadedMsg is sent by the config watcher when the file on disk
// changes. The next message uses the new settings.
type ConfigReloadedMsg struct {
	Config *config.Config
}
