// Package matching asks a language model for the résumé qualifications that best
// fit a job description and parses the answer into short selling points.
package matching

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/prompts"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

// Analyzer produces résumé-to-job selling points.
type Analyzer struct {
	gateway llm.Gateway
	logger  *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for degraded-result warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// New creates an Analyzer that calls gateway at llm.TierLite. A nil gateway is
// treated as unconfigured.
func New(gateway llm.Gateway, opts ...Option) *Analyzer {
	if gateway == nil {
		gateway = llm.Unconfigured{}
	}
	a := &Analyzer{gateway: llm.ForTier(gateway, llm.TierLite), logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns up to types.MaxMatchPoints selling points. It never fails: an
// unavailable model or a provider error yields an empty, non-nil slice.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) []string {
	if !a.gateway.Available() {
		a.logger.Debug("match analysis skipped: model gateway unavailable")
		return []string{}
	}

	responseText, err := a.gateway.Generate(ctx, buildPrompt(resumeText, jobDescription))
	if err != nil {
		a.logger.Warn("match analysis failed", slog.Any("error", err))
		return []string{}
	}

	points := ParsePoints(responseText)
	if len(points) == 0 {
		a.logger.Warn("match analysis returned no usable points", slog.Int("response_len", len(responseText)))
	}
	return points
}

func buildPrompt(resumeText, jobDescription string) string {
	return prompts.MustRender(prompts.TopMatchPoints, map[string]string{
		"Count":          strconv.Itoa(types.MaxMatchPoints),
		"ResumeText":     resumeText,
		"JobDescription": jobDescription,
	})
}

// ParsePoints turns a quasi-structured list answer into discrete points.
//
// A real JSON array of strings is tried first. When that fails the heuristic
// takes over: outer brackets are stripped, the rest is split on commas and each
// piece loses its surrounding quotes and whitespace. The heuristic cannot tell a
// separator from a comma inside a point, so such points come back split; this is
// accepted rather than re-prompting. Empty pieces are dropped and the result is
// capped at types.MaxMatchPoints.
func ParsePoints(responseText string) []string {
	cleaned := llm.Sanitize(responseText)

	var structured []string
	if err := json.Unmarshal([]byte(cleaned), &structured); err == nil {
		return capPoints(compact(structured))
	}

	return capPoints(splitHeuristic(cleaned))
}

func splitHeuristic(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")

	pieces := strings.Split(text, ",")
	points := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if p := trimQuotes(piece); p != "" {
			points = append(points, p)
		}
	}
	return points
}

// quoteChars are stripped from both ends of a heuristic piece.
const quoteChars = "\"'`“”‘’"

func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), quoteChars))
}

func compact(points []string) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func capPoints(points []string) []string {
	if len(points) > types.MaxMatchPoints {
		return points[:types.MaxMatchPoints]
	}
	return points
}
