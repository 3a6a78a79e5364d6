// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

// DefaultPort is the HTTP port used by `serve` when none is configured.
const DefaultPort = 8080

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, CLI flags or the environment.
type Config struct {
	// Inputs
	Resume string `json:"resume,omitempty"`  // Path to résumé text/markdown file
	Job    string `json:"job,omitempty"`     // Path to job description text/markdown file
	JobURL string `json:"job_url,omitempty"` // URL to fetch the job description from
	Out    string `json:"out,omitempty"`     // Path the letter is written to
	PIN    *int   `json:"pin,omitempty"`     // Résumé cache key

	// Model
	Provider     string `json:"provider,omitempty"`       // gemini or openai
	APIKey       string `json:"api_key,omitempty"`        // Gemini API key
	OpenAIAPIKey string `json:"openai_api_key,omitempty"` // OpenAI API key
	Model        string `json:"model,omitempty"`          // Pins every model tier to this model
	BaseURL      string `json:"base_url,omitempty"`       // OpenAI-compatible endpoint

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (package history)
	RedisURL    string `json:"redis_url,omitempty"`    // Redis URL (résumé cache mirror)

	// Behavior
	Port    int  `json:"port,omitempty"`    // HTTP port for serve
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the subcommand.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	switch llm.Provider(c.Provider) {
	case "", llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("config error: unknown provider %q (want %q or %q)", c.Provider, llm.ProviderGemini, llm.ProviderOpenAI)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.PIN != nil && (*c.PIN < 0 || *c.PIN > types.MaxPIN) {
		return fmt.Errorf("config error: 'pin' must be between 0 and %d", types.MaxPIN)
	}

	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&result.Resume, defaults.Resume)
	fill(&result.Job, defaults.Job)
	fill(&result.JobURL, defaults.JobURL)
	fill(&result.Out, defaults.Out)
	fill(&result.Provider, defaults.Provider)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	fill(&result.Model, defaults.Model)
	fill(&result.BaseURL, defaults.BaseURL)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.RedisURL, defaults.RedisURL)

	if result.PIN == nil && defaults.PIN != nil {
		pin := *defaults.PIN
		result.PIN = &pin
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills empty fields from the environment:
// GEMINI_API_KEY, OPENAI_API_KEY, LLM_PROVIDER, LLM_MODEL, OPENAI_BASE_URL,
// DATABASE_URL, REDIS_URL and PORT.
func (c *Config) ApplyEnv() {
	setFromEnv := func(dst *string, key string) {
		if *dst == "" {
			*dst = EnvString(key, "")
		}
	}
	setFromEnv(&c.APIKey, "GEMINI_API_KEY")
	setFromEnv(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setFromEnv(&c.Provider, "LLM_PROVIDER")
	setFromEnv(&c.Model, "LLM_MODEL")
	setFromEnv(&c.BaseURL, "OPENAI_BASE_URL")
	setFromEnv(&c.DatabaseURL, "DATABASE_URL")
	setFromEnv(&c.RedisURL, "REDIS_URL")

	if c.Port == 0 {
		c.Port = EnvInt("PORT", 0)
	}
}

// ListenPort returns the configured port or DefaultPort.
func (c *Config) ListenPort() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort
}

// ModelAPIKey returns the credential for the selected provider.
func (c *Config) ModelAPIKey() string {
	if llm.Provider(c.Provider) == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.APIKey
}

// LLMConfig returns the model configuration for the selected provider with any
// model or endpoint overrides applied.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigForProvider(c.Provider)
	if c.Model != "" {
		cfg = cfg.PinModel(c.Model)
	}
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	return cfg
}
