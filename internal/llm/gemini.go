package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGateway implements Gateway for Google Gemini
type GeminiGateway struct {
	client *genai.Client
	config *Config
	tier   ModelTier
}

// NewGeminiGateway creates a new Gemini gateway bound to a model tier
func NewGeminiGateway(ctx context.Context, config *Config, apiKey string, tier ModelTier) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGateway{
		client: client,
		config: config,
		tier:   tier,
	}, nil
}

// Generate sends prompt to the tier's model and returns the concatenated text parts
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	modelName := g.config.GetModel(g.tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", g.tier)
	}

	model := g.client.GenerativeModel(modelName)
	model.SetTemperature(g.config.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &APICallError{Provider: ProviderGemini, Message: "failed to generate content", Cause: err}
	}

	return extractTextFromResponse(resp)
}

// WithTier returns a gateway for tier that shares this gateway's client.
// Only the original gateway should be closed.
func (g *GeminiGateway) WithTier(tier ModelTier) Gateway {
	return &GeminiGateway{client: g.client, config: g.config, tier: tier}
}

// Available reports true; a Gemini gateway always has credentials.
func (g *GeminiGateway) Available() bool { return true }

// Close releases resources held by the client
func (g *GeminiGateway) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
