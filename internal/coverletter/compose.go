// Package coverletter drafts cover letters with a two-stage prompt chain:
// Stage A matches résumé qualifications to the job, Stage B writes the letter
// from that analysis.
package coverletter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/prompts"
)

// State is a step of the two-stage chain.
type State int

// Chain states, in order.
const (
	AwaitingAnalysis State = iota
	AwaitingDraft
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingAnalysis:
		return "awaiting_analysis"
	case AwaitingDraft:
		return "awaiting_draft"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{AwaitingAnalysis, AwaitingDraft, Done} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown cover letter state %q", text)
}

// stageStatus is how a single stage ended.
type stageStatus int

const (
	stageOK stageStatus = iota
	stageUnavailable
	stageFailed
)

// Result is the outcome of a full chain run.
type Result struct {
	Analysis string `json:"analysis"`
	Letter   string `json:"letter"`
	State    State  `json:"state"`
	// DraftSkipped is set when Stage B never ran because the model is unavailable.
	DraftSkipped bool `json:"draft_skipped"`
}

// Composer runs the cover-letter chain. It is stateless between calls.
type Composer struct {
	analyst llm.Gateway
	drafter llm.Gateway
	logger  *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for degraded-result warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) { c.logger = logger }
}

// New creates a Composer. Stage A runs at llm.TierLite and Stage B at
// llm.TierAdvanced. A nil gateway is treated as unconfigured.
func New(gateway llm.Gateway, opts ...Option) *Composer {
	if gateway == nil {
		gateway = llm.Unconfigured{}
	}
	c := &Composer{
		analyst: llm.ForTier(gateway, llm.TierLite),
		drafter: llm.ForTier(gateway, llm.TierAdvanced),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate runs Stage A then Stage B and returns the letter text.
func (c *Composer) Generate(ctx context.Context, resume, jobDetails string) string {
	return c.Run(ctx, resume, jobDetails).Letter
}

// Run drives the chain AwaitingAnalysis → AwaitingDraft → Done.
//
// If Stage A reports the model unavailable the chain ends without calling Stage B
// and the letter is empty. Otherwise Stage B always runs with whatever Stage A
// produced, including an empty analysis after a provider failure.
func (c *Composer) Run(ctx context.Context, resume, jobDetails string) Result {
	var res Result

	state := AwaitingAnalysis
	for state != Done {
		switch state {
		case AwaitingAnalysis:
			analysis, status := c.matchQualifications(ctx, resume, jobDetails)
			res.Analysis = analysis
			if status == stageUnavailable {
				res.DraftSkipped = true
				state = Done
				continue
			}
			state = AwaitingDraft
		case AwaitingDraft:
			res.Letter, _ = c.draftLetter(ctx, res.Analysis, jobDetails)
			state = Done
		}
	}

	res.State = state
	return res
}

// MatchQualifications is Stage A: a short analysis of the top 3 qualifications
// relevant to the job, returned exactly as the model wrote it. Empty when the
// model is unavailable or the call fails.
func (c *Composer) MatchQualifications(ctx context.Context, resume, jobDetails string) string {
	analysis, _ := c.matchQualifications(ctx, resume, jobDetails)
	return analysis
}

// DraftLetter is Stage B: the letter body written from a Stage-A analysis,
// returned exactly as the model wrote it. Empty when the model is unavailable or
// the call fails.
func (c *Composer) DraftLetter(ctx context.Context, analysis, jobDetails string) string {
	letter, _ := c.draftLetter(ctx, analysis, jobDetails)
	return letter
}

func (c *Composer) matchQualifications(ctx context.Context, resume, jobDetails string) (string, stageStatus) {
	prompt := prompts.MustRender(prompts.MatchQualifications, map[string]string{
		"Resume":     resume,
		"JobDetails": jobDetails,
	})
	return c.invoke(ctx, c.analyst, "match_qualifications", prompt)
}

func (c *Composer) draftLetter(ctx context.Context, analysis, jobDetails string) (string, stageStatus) {
	prompt := prompts.MustRender(prompts.DraftLetter, map[string]string{
		"Analysis":   analysis,
		"JobDetails": jobDetails,
	})
	return c.invoke(ctx, c.drafter, "draft_letter", prompt)
}

func (c *Composer) invoke(ctx context.Context, gateway llm.Gateway, stage, prompt string) (string, stageStatus) {
	if !gateway.Available() {
		c.logger.Debug("cover letter stage skipped: model gateway unavailable", slog.String("stage", stage))
		return "", stageUnavailable
	}

	text, err := gateway.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("cover letter stage failed", slog.String("stage", stage), slog.Any("error", err))
		return "", stageFailed
	}
	return text, stageOK
}
