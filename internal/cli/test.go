// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// test.go - Probe the configured provider.
//
// Command: test
//
// With a model configured, sends a one-token completion against it;
// otherwise lists models to verify reachability.
//
// Exit Codes:
//   0   Connection succeeded
//   1   Connection failed
//
// Examples:
//   cardassist test
//   cardassist test --no-model     Skip the completion, list models only

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/cardassist/internal/config"
	"github.com/jeranaias/cardassist/internal/provider"
)

// HandleTest probes the configured provider and prints the result.
func HandleTest(args []string) {
	parser := NewArgParser(args)

	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}

	pc := cfg.ProviderConfig()
	if parser.BoolFlag("no-model") {
		pc.Model = ""
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Testing %s", pc.Provider.DisplayName())))
	if pc.Model != "" {
		fmt.Println(LabelStyle.Render("Model:") + pc.Model)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	ok, msg := provider.TestConnection(ctx, pc)
	if ok {
		fmt.Println(SuccessStyle.Render("✓ " + msg))
		return
	}
	fmt.Println(ErrorStyle.Render("✗ " + msg))
	os.Exit(1)
}
