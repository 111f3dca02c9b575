// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/cardassist/internal/provider"
	"github.com/jeranaias/cardassist/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config represents the complete cardassist configuration.
type Config struct {
	// Provider selects the chat backend: "openrouter", "ollama", "gemini"
	Provider string `toml:"provider" json:"provider"`

	// APIKey is the OpenRouter API key
	APIKey string `toml:"api_key" json:"api_key"`
	// GeminiAPIKey is the Gemini API key
	GeminiAPIKey string `toml:"gemini_api_key" json:"gemini_api_key"`
	// OllamaURL is the address of the local Ollama server
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`

	// Per-provider model selection. The active one is resolved through
	// ActiveModel.
	OpenRouterModel string `toml:"openrouter_model" json:"openrouter_model"`
	OllamaModel     string `toml:"ollama_model" json:"ollama_model"`
	GeminiModel     string `toml:"gemini_model" json:"gemini_model"`

	// LegacyModel holds the deprecated "model" key from older config
	// files. Migrate moves it into OpenRouterModel.
	LegacyModel string `toml:"model" json:"model,omitempty"`

	// SystemPrompt is prepended to every conversation when non-empty
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`

	// MaxTokens bounds the reply length. Valid range: 64-16384.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// Temperature is the sampling temperature. Valid range: 0.0-2.0.
	Temperature float64 `toml:"temperature" json:"temperature"`

	// UI settings for the terminal harness
	UI UIConfig `toml:"ui" json:"ui"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowContext displays the extracted card context above the chat
	ShowContext bool `toml:"show_context" json:"show_context"`
}

// MaxTokens bounds, matching the settings dialog range.
const (
	MinMaxTokens = 64
	MaxMaxTokens = 16384
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider:        string(provider.ProviderOpenRouter),
		APIKey:          "",
		GeminiAPIKey:    "",
		OllamaURL:       provider.DefaultOllamaURL,
		OpenRouterModel: "deepseek/deepseek-v3.2",
		OllamaModel:     "",
		GeminiModel:     "gemini-2.5-flash",
		SystemPrompt:    "",
		MaxTokens:       1024,
		Temperature:     0.7,
		UI: UIConfig{
			Theme:       "auto",
			ShowContext: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the cardassist configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cardassist"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only) to protect API
// keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s). Tries TOML first,
// then JSON, and falls back to defaults. Environment overrides are
// applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	cfg, err = finalize(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// finalize applies overrides, migration, defaults, and validation.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.Migrate()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file, fixing file
// permissions if needed.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file, fixing file
// permissions if needed.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600
// permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# cardassist configuration file\n")
	buf.WriteString("# Generated by cardassist - edit with care\n\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600
// permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// MIGRATION / DEFAULTS / OVERRIDES
// =============================================================================

// Migrate upgrades configuration from older layouts. The single
// "model" key predates per-provider model selection; it becomes the
// OpenRouter model.
func (c *Config) Migrate() {
	if c.LegacyModel != "" {
		if c.OpenRouterModel == "" {
			c.OpenRouterModel = c.LegacyModel
		}
		c.LegacyModel = ""
	}
}

// SetDefaults fills in any missing values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.OllamaURL == "" {
		c.OllamaURL = defaults.OllamaURL
	}
	if c.OpenRouterModel == "" {
		c.OpenRouterModel = defaults.OpenRouterModel
	}
	if c.GeminiModel == "" {
		c.GeminiModel = defaults.GeminiModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaults.MaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = defaults.Temperature
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// ApplyEnvOverrides applies CARDASSIST_* environment variables over
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CARDASSIST_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("CARDASSIST_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("CARDASSIST_GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("CARDASSIST_OLLAMA_URL"); v != "" {
		c.OllamaURL = v
	}
	if v := os.Getenv("CARDASSIST_MODEL"); v != "" {
		switch provider.Provider(c.Provider) {
		case provider.ProviderOllama:
			c.OllamaModel = v
		case provider.ProviderGemini:
			c.GeminiModel = v
		default:
			c.OpenRouterModel = v
		}
	}
	if v := os.Getenv("CARDASSIST_SYSTEM_PROMPT"); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv("CARDASSIST_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv("CARDASSIST_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !provider.Provider(strings.ToLower(c.Provider)).Valid() {
		errs = append(errs, ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: openrouter, ollama, gemini", c.Provider),
		})
	}

	if c.OllamaURL != "" {
		if u, err := url.Parse(c.OllamaURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.OllamaURL),
			})
		}
	}

	if c.MaxTokens < MinMaxTokens || c.MaxTokens > MaxMaxTokens {
		errs = append(errs, ValidationError{
			Field:   "max_tokens",
			Message: fmt.Sprintf("must be between %d and %d", MinMaxTokens, MaxMaxTokens),
		})
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "temperature",
			Message: "must be between 0.0 and 2.0",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ActiveModel returns the model selected for the configured provider.
func (c *Config) ActiveModel() string {
	switch provider.Provider(strings.ToLower(c.Provider)) {
	case provider.ProviderOllama:
		return c.OllamaModel
	case provider.ProviderGemini:
		return c.GeminiModel
	default:
		return c.OpenRouterModel
	}
}

// ProviderConfig assembles the per-request provider configuration.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Provider:    provider.Provider(strings.ToLower(c.Provider)),
		APIKey:      c.APIKey,
		GeminiKey:   c.GeminiAPIKey,
		BaseURL:     c.OllamaURL,
		Model:       c.ActiveModel(),
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}
