package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Gateway is the single-operation seam between the generation pipeline and a
// language-model provider.
//
// Available reports whether the gateway can reach a model at all. An unavailable
// gateway stays unavailable for its whole lifetime; callers check it once and
// degrade instead of calling Generate.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Available() bool
}

// ErrUnconfigured is returned by Unconfigured.Generate.
var ErrUnconfigured = errors.New("model gateway is not configured")

// Unconfigured is the Gateway used when no model credentials were supplied.
type Unconfigured struct{}

// Generate always fails with ErrUnconfigured.
func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrUnconfigured
}

// Available always reports false.
func (Unconfigured) Available() bool { return false }

// GatewayOption customizes a gateway built by NewGateway.
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for configuration warnings.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(o *gatewayOptions) { o.logger = logger }
}

// NewGateway builds the TierStandard gateway for the configured provider; bind
// other tiers with ForTier. A missing API key
// is not an error: it yields Unconfigured and a warning, and every model-dependent
// operation downstream degrades to its empty result.
func NewGateway(ctx context.Context, config *Config, apiKey string, opts ...GatewayOption) (Gateway, error) {
	o := gatewayOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if config == nil {
		config = DefaultConfig()
	}

	if apiKey == "" {
		o.logger.Warn("no model credentials configured; generation will return empty results",
			slog.String("provider", string(config.Provider)))
		return Unconfigured{}, nil
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIGateway(config, apiKey, TierStandard)
	case ProviderGemini:
		return NewGeminiGateway(ctx, config, apiKey, TierStandard)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}

// TierSelector is implemented by gateways that can serve another model tier
// from the same client.
type TierSelector interface {
	WithTier(tier ModelTier) Gateway
}

// ForTier returns g bound to tier. Gateways without tiers, such as Unconfigured,
// are returned unchanged.
func ForTier(g Gateway, tier ModelTier) Gateway {
	if ts, ok := g.(TierSelector); ok {
		return ts.WithTier(tier)
	}
	return g
}

// Close releases provider resources if the gateway holds any.
func Close(g Gateway) error {
	if c, ok := g.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
