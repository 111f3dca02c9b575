// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// cardassist.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.cardassist/config.toml
//   - ~/.cardassist/config.json
//   - Built-in defaults
//
// Environment overrides use the CARDASSIST_ prefix, for example
// CARDASSIST_API_KEY or CARDASSIST_PROVIDER.
package config
