// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
		rest []string
	}{
		{"no args defaults to chat", []string{"cardassist"}, CmdChat, nil},
		{"explicit chat", []string{"cardassist", "chat", "--card", "c.json"}, CmdChat, []string{"--card", "c.json"}},
		{"models", []string{"cardassist", "models"}, CmdModels, []string{}},
		{"model alias", []string{"cardassist", "model"}, CmdModels, []string{}},
		{"test", []string{"cardassist", "test"}, CmdTest, []string{}},
		{"config", []string{"cardassist", "config", "set", "provider", "ollama"}, CmdConfig, []string{"set", "provider", "ollama"}},
		{"history", []string{"cardassist", "history", "list"}, CmdHistory, []string{"list"}},
		{"sessions alias", []string{"cardassist", "sessions"}, CmdHistory, []string{}},
		{"clean", []string{"cardassist", "clean", "card.json"}, CmdClean, []string{"card.json"}},
		{"version", []string{"cardassist", "--version"}, CmdVersion, []string{}},
		{"help", []string{"cardassist", "help"}, CmdHelp, []string{}},
		{"unknown falls through to chat", []string{"cardassist", "--theme", "dark"}, CmdChat, []string{"--theme", "dark"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()

			cmd, rest := Parse()
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"export", "abc123", "--format=json", "--confirm", "-n", "5"})

	assert.Equal(t, "export", p.Subcommand())
	assert.Equal(t, "abc123", p.Positional(1))
	assert.Equal(t, "json", p.Flag("format"))
	assert.True(t, p.BoolFlag("confirm"))
	assert.Equal(t, "5", p.Flag("n"))
	assert.Equal(t, 5, p.FlagIntOrDefault("n", 1))
	assert.Equal(t, 2, p.PositionalCount())
	assert.True(t, p.HasFlag("format"))
	assert.False(t, p.HasFlag("missing"))
}

func TestArgParserDefaults(t *testing.T) {
	p := NewArgParser(nil)

	assert.Empty(t, p.Subcommand())
	assert.Empty(t, p.Positional(0))
	assert.Empty(t, p.Flag("anything"))
	assert.Equal(t, "md", p.FlagOrDefault("format", "md"))
	assert.Equal(t, 10, p.FlagIntOrDefault("count", 10))
	assert.Empty(t, p.PositionalFrom(3))
}

func TestArgParserExplicitBool(t *testing.T) {
	p := NewArgParser([]string{"--json=false", "--verbose=true"})
	assert.False(t, p.BoolFlag("json"))
	assert.True(t, p.BoolFlag("verbose"))
}

func TestLoadCard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.json")

	raw := `{"fields":[{"name":"Front","value":"<b>corazón</b>"},{"name":"Back","value":"heart"}],"answer_shown":true}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	loaded, err := LoadCard(path)
	require.NoError(t, err)
	assert.True(t, loaded.AnswerShown)
	require.Len(t, loaded.Fields, 2)
	assert.Equal(t, "Front", loaded.Fields[0].Name)

	_, err = LoadCard(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{bad"), 0600))
	_, err = LoadCard(path)
	assert.Error(t, err)

	var roundtrip CardFile
	require.NoError(t, json.Unmarshal([]byte(raw), &roundtrip))
	assert.Equal(t, loaded.Fields, roundtrip.Fields)
}
