// Package llmtest provides a scripted llm.Gateway for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/cover-letter-agent/internal/llm"
)

// Reply is one scripted gateway response.
type Reply struct {
	Text string
	Err  error
}

// Gateway replays scripted replies in order and records every prompt it receives.
// Calls beyond the script fail.
type Gateway struct {
	mu          sync.Mutex
	replies     []Reply
	prompts     []string
	tiers       []llm.ModelTier
	unavailable bool
}

// New returns an available gateway that answers with texts in order.
func New(texts ...string) *Gateway {
	g := &Gateway{}
	for _, t := range texts {
		g.replies = append(g.replies, Reply{Text: t})
	}
	return g
}

// NewWithReplies returns an available gateway scripted with full replies.
func NewWithReplies(replies ...Reply) *Gateway {
	return &Gateway{replies: replies}
}

// NewUnavailable returns a gateway that reports itself unavailable.
// Generate still records the prompt so tests can assert it was never called.
func NewUnavailable() *Gateway {
	return &Gateway{unavailable: true}
}

// Generate returns the next scripted reply. Calls made directly on g are
// recorded with an empty tier.
func (g *Gateway) Generate(_ context.Context, prompt string) (string, error) {
	return g.generate(prompt, "")
}

// WithTier returns a view of g that records tier with each call. Views share
// g's script and history.
func (g *Gateway) WithTier(tier llm.ModelTier) llm.Gateway {
	return &tiered{parent: g, tier: tier}
}

func (g *Gateway) generate(prompt string, tier llm.ModelTier) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	g.tiers = append(g.tiers, tier)
	if idx >= len(g.replies) {
		return "", fmt.Errorf("llmtest: unexpected call %d", idx+1)
	}
	return g.replies[idx].Text, g.replies[idx].Err
}

// Available reports whether the gateway was built as available.
func (g *Gateway) Available() bool {
	return !g.unavailable
}

// Calls returns how many times Generate was invoked.
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// Prompts returns a copy of the prompts received, in call order.
func (g *Gateway) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.prompts))
	copy(out, g.prompts)
	return out
}

// Tiers returns the tier of each call, in call order.
func (g *Gateway) Tiers() []llm.ModelTier {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]llm.ModelTier, len(g.tiers))
	copy(out, g.tiers)
	return out
}

type tiered struct {
	parent *Gateway
	tier   llm.ModelTier
}

func (t *tiered) Generate(_ context.Context, prompt string) (string, error) {
	return t.parent.generate(prompt, t.tier)
}

func (t *tiered) Available() bool {
	return t.parent.Available()
}
