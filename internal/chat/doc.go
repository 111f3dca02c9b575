// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns conversation state for one review session.
//
// A Session accumulates the user/assistant transcript, tracks the
// current card context, and drives the streaming client. At most one
// stream is in flight per session: Send cancels and joins any previous
// stream before starting the next one, so event order is always
// consistent with transcript order.
//
// Card lifecycle entry points mirror what a host review UI needs:
//
//   - OnNewCard: new card shown, conversation resets, context swaps
//   - OnAnswerShown: answer revealed, context swaps, history kept
//   - Cleanup: review ended, everything clears
package chat
