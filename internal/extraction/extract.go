// Package extraction turns raw résumé text into a structured ResumeRecord using a language model.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/schemas"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

// Extractor scans résumés with a model gateway.
type Extractor struct {
	gateway llm.Gateway
	schema  llm.ExtractionSchema
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for degraded-result warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New creates an Extractor that calls gateway at llm.TierStandard. A nil gateway
// is treated as unconfigured.
func New(gateway llm.Gateway, opts ...Option) *Extractor {
	if gateway == nil {
		gateway = llm.Unconfigured{}
	}
	e := &Extractor{
		gateway: llm.ForTier(gateway, llm.TierStandard),
		schema:  llm.ResumeRecordSchema(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds a ResumeRecord from resumeText.
//
// The only error is ErrEmptyInput. An unavailable model, a provider failure or an
// unparseable response all produce the empty record instead; the returned record
// always has non-nil sequences and carries resumeText in RawResumeText.
func (e *Extractor) Extract(ctx context.Context, resumeText string) (*types.ResumeRecord, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyInput
	}

	if !e.gateway.Available() {
		e.logger.Debug("extraction skipped: model gateway unavailable")
		return emptyRecord(resumeText), nil
	}

	prompt := llm.BuildExtractionPrompt(e.schema, resumeText)

	responseText, err := e.gateway.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("resume extraction failed", slog.Any("error", err))
		return emptyRecord(resumeText), nil
	}

	record, err := ParseRecord(responseText)
	if err != nil {
		e.logger.Warn("resume extraction returned unparseable output",
			slog.Any("error", err),
			slog.Any("schema_violations", schemaViolations(responseText)),
			slog.Int("response_len", len(responseText)))
		return emptyRecord(resumeText), nil
	}

	if violations := schemaViolations(responseText); len(violations) > 0 {
		e.logger.Warn("resume extraction response does not match the record schema",
			slog.Any("schema_violations", violations))
	}

	record.RawResumeText = resumeText
	return record, nil
}

// ParseRecord sanitizes a model response and strictly decodes it into a normalized
// ResumeRecord. Any decoding problem fails the whole parse; there is no partial result.
func ParseRecord(responseText string) (*types.ResumeRecord, error) {
	cleaned := llm.Sanitize(responseText)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, &ParseError{Message: "response does not contain a JSON object"}
	}

	var record types.ResumeRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return nil, &ParseError{
			Message: "failed to parse JSON response",
			Cause:   err,
		}
	}

	record.Normalize()
	return &record, nil
}

// schemaViolations lists the fields of a response that break the ResumeRecord
// schema. It only feeds diagnostics; a decodable response is kept either way.
func schemaViolations(responseText string) []string {
	var validationErr *schemas.ValidationError
	if err := schemas.ValidateResumeRecord(llm.Sanitize(responseText)); errors.As(err, &validationErr) {
		return validationErr.Fields()
	}
	return nil
}

func emptyRecord(resumeText string) *types.ResumeRecord {
	r := types.EmptyResumeRecord()
	r.RawResumeText = resumeText
	return r
}
