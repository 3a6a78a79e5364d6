package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIGateway implements Gateway for the OpenAI chat completions API
// (and OpenAI-compatible servers via Config.BaseURL).
type OpenAIGateway struct {
	client openai.Client
	config *Config
	tier   ModelTier
}

// NewOpenAIGateway creates a new OpenAI gateway bound to a model tier.
// SDK retries are disabled: a failed call degrades instead of being retried.
func NewOpenAIGateway(config *Config, apiKey string, tier ModelTier) (*OpenAIGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIGateway{
		client: openai.NewClient(opts...),
		config: config,
		tier:   tier,
	}, nil
}

// Generate sends prompt as a single user message and returns the first choice
func (g *OpenAIGateway) Generate(ctx context.Context, prompt string) (string, error) {
	modelName := g.config.GetModel(g.tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", g.tier)
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(modelName),
		Temperature: openai.Float(float64(g.config.Temperature)),
	})
	if err != nil {
		return "", &APICallError{Provider: ProviderOpenAI, Message: "chat completion failed", Cause: err}
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return completion.Choices[0].Message.Content, nil
}

// WithTier returns a gateway for tier that shares this gateway's client.
func (g *OpenAIGateway) WithTier(tier ModelTier) Gateway {
	return &OpenAIGateway{client: g.client, config: g.config, tier: tier}
}

// Available reports true; an OpenAI gateway always has credentials.
func (g *OpenAIGateway) Available() bool { return true }
