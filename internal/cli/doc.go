// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements command line parsing and handlers for
// cardassist.
//
// The default command launches the terminal chat; the rest are small
// utilities around the same core: listing models, probing the
// configured provider, managing configuration, browsing saved
// transcripts, and previewing card-context extraction.
package cli
