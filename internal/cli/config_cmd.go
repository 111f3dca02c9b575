// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration management command.
//
// Command: config [show|set|path]
//
// Subcommands:
//   show (default)     Print the effective configuration
//   set KEY VALUE      Set one key and save
//   path               Print the config file path
//
// Examples:
//   cardassist config
//   cardassist config set provider ollama
//   cardassist config set ollama_model llama3.2

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/cardassist/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args []string) {
	parser := NewArgParser(args)

	switch parser.Subcommand() {
	case "", "show":
		configShow()
	case "set":
		configSet(parser.Positional(1), strings.Join(parser.PositionalFrom(2), " "))
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			fail("config: %v", err)
		}
		fmt.Println(path)
	default:
		fail("unknown config subcommand %q (want show, set, or path)", parser.Subcommand())
	}
}

func configShow() {
	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}

	fmt.Println(TitleStyle.Render("Configuration"))
	fmt.Println(LabelStyle.Render("provider:") + cfg.Provider)
	fmt.Println(LabelStyle.Render("model:") + cfg.ActiveModel())
	fmt.Println(LabelStyle.Render("ollama_url:") + cfg.OllamaURL)
	fmt.Println(LabelStyle.Render("api_key:") + maskKey(cfg.APIKey))
	fmt.Println(LabelStyle.Render("gemini_api_key:") + maskKey(cfg.GeminiAPIKey))
	fmt.Println(LabelStyle.Render("max_tokens:") + strconv.Itoa(cfg.MaxTokens))
	fmt.Println(LabelStyle.Render("temperature:") + strconv.FormatFloat(cfg.Temperature, 'f', -1, 64))
	if cfg.SystemPrompt != "" {
		fmt.Println(LabelStyle.Render("system_prompt:") + cfg.SystemPrompt)
	}
}

func configSet(key, value string) {
	if key == "" || value == "" {
		fail("usage: cardassist config set KEY VALUE")
	}

	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}

	switch key {
	case "provider":
		cfg.Provider = value
	case "api_key":
		cfg.APIKey = value
	case "gemini_api_key":
		cfg.GeminiAPIKey = value
	case "ollama_url":
		cfg.OllamaURL = value
	case "openrouter_model":
		cfg.OpenRouterModel = value
	case "ollama_model":
		cfg.OllamaModel = value
	case "gemini_model":
		cfg.GeminiModel = value
	case "system_prompt":
		cfg.SystemPrompt = value
	case "max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			fail("max_tokens must be an integer")
		}
		cfg.MaxTokens = n
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fail("temperature must be a number")
		}
		cfg.Temperature = f
	default:
		fail("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		fail("invalid config: %v", err)
	}
	if err := config.Save(cfg); err != nil {
		fail("saving config: %v", err)
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Set %s", key)))
}

// maskKey hides all but the tail of an API key.
func maskKey(key string) string {
	if key == "" {
		return DimStyle.Render("(not set)")
	}
	runes := []rune(key)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
