// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - List available models for the configured provider.
//
// Command: models
//
// Examples:
//   cardassist models
//   cardassist models --provider ollama

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/cardassist/internal/config"
	"github.com/jeranaias/cardassist/internal/provider"
)

// HandleModels lists the models available from the configured provider,
// sorted. Failures yield an empty list rather than an error so the
// command mirrors what the settings UI would show.
func HandleModels(args []string) {
	parser := NewArgParser(args)

	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}
	if p := parser.Flag("provider"); p != "" {
		cfg.Provider = p
		if err := cfg.Validate(); err != nil {
			fail("config: %v", err)
		}
	}

	pc := cfg.ProviderConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	models := provider.ListModels(ctx, pc)

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Models — %s", pc.Provider.DisplayName())))
	if len(models) == 0 {
		fmt.Println(DimStyle.Render("No models available (check connectivity and credentials)."))
		return
	}
	for _, m := range models {
		marker := "  "
		if m == pc.Model {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Printf("%s%s\n", marker, m)
	}
	fmt.Println(DimStyle.Render(fmt.Sprintf("%d model(s); * = configured", len(models))))
}
