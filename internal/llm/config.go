// Package llm provides centralized LLM configuration and the model gateway used by
// the extraction, matching and cover-letter components.
package llm

import "maps"

// ModelTier selects how capable (and how expensive) a model a call gets.
type ModelTier string

// Tiers, cheapest first. Matching and the Stage-A analysis run on TierLite,
// extraction on TierStandard and the letter draft on TierAdvanced.
const (
	TierLite     ModelTier = "lite"
	TierStandard ModelTier = "standard"
	TierAdvanced ModelTier = "advanced"
)

// Provider names a model vendor.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Config maps each tier to a concrete model for one provider.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Temperature applied to every request. Low values keep JSON output stable.
	Temperature float32
	// BaseURL overrides the provider endpoint (OpenAI-compatible servers, tests).
	BaseURL string
}

// DefaultConfig is the Gemini configuration.
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the Gemini tier table.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
	}
}

// DefaultOpenAIConfig returns the OpenAI tier table.
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
		Temperature: 0.1,
	}
}

// ConfigForProvider returns the default configuration for a provider name.
// Unknown or empty names fall back to Gemini.
func ConfigForProvider(name string) *Config {
	if Provider(name) == ProviderOpenAI {
		return DefaultOpenAIConfig()
	}
	return DefaultGeminiConfig()
}

// GetModel returns the model for tier. A tier missing from the table falls back
// to TierStandard, then TierLite; "" means nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string)
	}
	out.Models[tier] = model
	return &out
}

// PinModel returns a copy of c that uses model for every tier.
func (c *Config) PinModel(model string) *Config {
	out := c
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		out = out.WithModel(tier, model)
	}
	return out
}
