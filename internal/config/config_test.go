// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cardassist/internal/provider"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "deepseek/deepseek-v3.2", cfg.OpenRouterModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestSetDefaultsFillsMissing(t *testing.T) {
	cfg := &Config{APIKey: "sk-test"}
	cfg.SetDefaults()

	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "deepseek/deepseek-v3.2", cfg.OpenRouterModel)
}

func TestMigrateLegacyModelKey(t *testing.T) {
	cfg := &Config{LegacyModel: "openai/gpt-4o"}
	cfg.Migrate()
	assert.Equal(t, "openai/gpt-4o", cfg.OpenRouterModel)
	assert.Empty(t, cfg.LegacyModel)

	// An explicit per-provider model wins over the legacy key.
	cfg = &Config{LegacyModel: "old", OpenRouterModel: "new"}
	cfg.Migrate()
	assert.Equal(t, "new", cfg.OpenRouterModel)
	assert.Empty(t, cfg.LegacyModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad provider", func(c *Config) { c.Provider = "anthropic" }, "provider"},
		{"bad ollama url", func(c *Config) { c.OllamaURL = "not a url" }, "ollama_url"},
		{"max_tokens too small", func(c *Config) { c.MaxTokens = 1 }, "max_tokens"},
		{"max_tokens too large", func(c *Config) { c.MaxTokens = 99999 }, "max_tokens"},
		{"temperature too high", func(c *Config) { c.Temperature = 3.0 }, "temperature"},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestActiveModel(t *testing.T) {
	cfg := Default()
	cfg.OpenRouterModel = "or-model"
	cfg.OllamaModel = "ol-model"
	cfg.GeminiModel = "ge-model"

	cfg.Provider = "openrouter"
	assert.Equal(t, "or-model", cfg.ActiveModel())
	cfg.Provider = "ollama"
	assert.Equal(t, "ol-model", cfg.ActiveModel())
	cfg.Provider = "gemini"
	assert.Equal(t, "ge-model", cfg.ActiveModel())
}

func TestProviderConfig(t *testing.T) {
	cfg := Default()
	cfg.Provider = "Gemini"
	cfg.GeminiAPIKey = "g-key"
	cfg.GeminiModel = "gemini-2.5-flash"

	pc := cfg.ProviderConfig()
	assert.Equal(t, provider.ProviderGemini, pc.Provider)
	assert.Equal(t, "g-key", pc.GeminiKey)
	assert.Equal(t, "gemini-2.5-flash", pc.Model)
	assert.Equal(t, 1024, pc.MaxTokens)
	assert.Equal(t, 0.7, pc.Temperature)
}

func TestSaveAndLoadTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.APIKey = "sk-or-secret"
	cfg.OpenRouterModel = "meta/llama-3"
	cfg.SystemPrompt = "Be terse."
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-secret", loaded.APIKey)
	assert.Equal(t, "meta/llama-3", loaded.OpenRouterModel)
	assert.Equal(t, "Be terse.", loaded.SystemPrompt)
	assert.Equal(t, 1024, loaded.MaxTokens)
}

func TestLoadFromPathJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Provider = "ollama"
	cfg.OllamaModel = "llama3.2"
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", loaded.Provider)
	assert.Equal(t, "llama3.2", loaded.ActiveModel())
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("provider = \"ollama\"\n"), 0644))

	cfg := Default()
	require.NoError(t, LoadTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Equal(t, "ollama", cfg.Provider)
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("provider = \"anthropic\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CARDASSIST_PROVIDER", "ollama")
	t.Setenv("CARDASSIST_OLLAMA_URL", "http://10.0.0.5:11434")
	t.Setenv("CARDASSIST_MODEL", "qwen2.5")
	t.Setenv("CARDASSIST_MAX_TOKENS", "2048")
	t.Setenv("CARDASSIST_TEMPERATURE", "0.2")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.OllamaURL)
	assert.Equal(t, "qwen2.5", cfg.OllamaModel)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 0.2, cfg.Temperature)
}

func TestEnvOverrideIgnoresBadNumbers(t *testing.T) {
	t.Setenv("CARDASSIST_MAX_TOKENS", "lots")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 1024, cfg.MaxTokens)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	require.NoError(t, SaveTOML(cfg, path))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	cfg.SystemPrompt = "updated prompt"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-reloaded:
		assert.Equal(t, "updated prompt", got.SystemPrompt)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload config")
	}
}
