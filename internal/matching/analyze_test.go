package matching

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "five quoted points",
			input:    `["point1", "point2", "point3", "point4", "point5"]`,
			expected: []string{"point1", "point2", "point3", "point4", "point5"},
		},
		{
			name:     "structured parse keeps commas inside points",
			input:    `["Go, Rust and C", "Led a team of 5"]`,
			expected: []string{"Go, Rust and C", "Led a team of 5"},
		},
		{
			name:     "fenced JSON array",
			input:    "```json\n[\"a\", \"b\"]\n```",
			expected: []string{"a", "b"},
		},
		{
			name:     "single quotes fall back to heuristic",
			input:    `['Java', 'Spring Boot', 'Unit Testing']`,
			expected: []string{"Java", "Spring Boot", "Unit Testing"},
		},
		{
			name:     "unquoted list",
			input:    `[Java, Spring Boot, Kafka]`,
			expected: []string{"Java", "Spring Boot", "Kafka"},
		},
		{
			name:     "no brackets",
			input:    `"Java", "Kafka"`,
			expected: []string{"Java", "Kafka"},
		},
		{
			name:     "curly quotes",
			input:    "[“Java”, “Kafka”]",
			expected: []string{"Java", "Kafka"},
		},
		{
			name:     "heuristic splits commas inside points",
			input:    `['Go, Rust', 'SQL']`,
			expected: []string{"Go", "Rust", "SQL"},
		},
		{
			name:     "empty pieces dropped",
			input:    `["a", , "", "b",]`,
			expected: []string{"a", "b"},
		},
		{
			name:     "blank entries dropped in structured path",
			input:    `["a", "  ", "b"]`,
			expected: []string{"a", "b"},
		},
		{
			name:     "capped at five",
			input:    `["1", "2", "3", "4", "5", "6", "7"]`,
			expected: []string{"1", "2", "3", "4", "5"},
		},
		{
			name:     "empty list",
			input:    `[]`,
			expected: []string{},
		},
		{
			name:     "empty response",
			input:    ``,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePoints(tt.input))
		})
	}
}

func TestAnalyze_ReturnsParsedPoints(t *testing.T) {
	gw := llmtest.New(`["point1", "point2", "point3", "point4", "point5"]`)
	a := New(gw, WithLogger(quietLogger()))

	points := a.Analyze(context.Background(), "Java Developer with 5 years experience.", "Looking for a Senior Java Engineer.")

	assert.Equal(t, []string{"point1", "point2", "point3", "point4", "point5"}, points)
	require.Equal(t, 1, gw.Calls())

	prompt := gw.Prompts()[0]
	assert.Contains(t, prompt, "Java Developer with 5 years experience.")
	assert.Contains(t, prompt, "Looking for a Senior Java Engineer.")
	assert.Contains(t, prompt, "exactly the 5 most relevant")
	assert.Equal(t, []llm.ModelTier{llm.TierLite}, gw.Tiers())
}

func TestAnalyze_UnavailableGateway(t *testing.T) {
	gw := llmtest.NewUnavailable()
	points := New(gw).Analyze(context.Background(), "resume", "job")

	assert.NotNil(t, points)
	assert.Empty(t, points)
	assert.Equal(t, 0, gw.Calls())
}

func TestAnalyze_ProviderError(t *testing.T) {
	gw := llmtest.NewWithReplies(llmtest.Reply{Err: errors.New("timeout")})
	points := New(gw, WithLogger(quietLogger())).Analyze(context.Background(), "resume", "job")

	assert.NotNil(t, points)
	assert.Empty(t, points)
	assert.Equal(t, 1, gw.Calls())
}

func TestAnalyze_NilGateway(t *testing.T) {
	assert.Equal(t, []string{}, New(nil).Analyze(context.Background(), "resume", "job"))
}
