package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/llm/llmtest"
	"github.com/jonathan/cover-letter-agent/internal/schemas"
	"github.com/jonathan/cover-letter-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = "Jane Doe\njane@example.com\nGo developer, 5 years.\nAcme Corp 2019-2024: built APIs."

const sampleResponse = `{
	"fullName": "Jane Doe",
	"email": "jane@example.com",
	"phone": null,
	"summary": "Go developer",
	"skills": ["Go", "PostgreSQL"],
	"education": null,
	"workExperience": [
		{"jobTitle": "Backend Engineer", "company": "Acme Corp", "startDate": "2019", "endDate": "2024", "responsibilities": ["Built APIs"]},
		{"jobTitle": "Intern", "company": "Initech"}
	]
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func assertEmptyRecord(t *testing.T, r *types.ResumeRecord) {
	t.Helper()
	require.NotNil(t, r)
	assert.True(t, r.IsEmpty(), "record should carry no extracted data")
	assert.NotNil(t, r.Skills)
	assert.NotNil(t, r.Education)
	assert.NotNil(t, r.Certifications)
	assert.NotNil(t, r.WorkExperience)
}

func TestExtract_Success(t *testing.T) {
	gw := llmtest.New(sampleResponse)
	e := New(gw, WithLogger(quietLogger()))

	record, err := e.Extract(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", types.StringValue(record.FullName))
	assert.Equal(t, "jane@example.com", types.StringValue(record.Email))
	assert.Nil(t, record.Phone)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, record.Skills)
	assert.Equal(t, []string{}, record.Education)
	assert.Equal(t, []string{}, record.Certifications)
	require.Len(t, record.WorkExperience, 2)
	assert.Equal(t, "Acme Corp", types.StringValue(record.WorkExperience[0].Company))
	assert.Equal(t, []string{"Built APIs"}, record.WorkExperience[0].Responsibilities)
	assert.Equal(t, []string{}, record.WorkExperience[1].Responsibilities)
	assert.Equal(t, sampleResume, record.RawResumeText)

	require.Equal(t, 1, gw.Calls())
	prompt := gw.Prompts()[0]
	assert.Contains(t, prompt, sampleResume)
	assert.Contains(t, prompt, "workExperience")
	assert.Equal(t, []llm.ModelTier{llm.TierStandard}, gw.Tiers())
}

func TestExtract_FencedResponse(t *testing.T) {
	fenced := llmtest.New("```json\n" + sampleResponse + "\n```")
	plain := llmtest.New(sampleResponse)

	fromFenced, err := New(fenced, WithLogger(quietLogger())).Extract(context.Background(), sampleResume)
	require.NoError(t, err)
	fromPlain, err := New(plain, WithLogger(quietLogger())).Extract(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, fromPlain, fromFenced)
}

func TestExtract_DegradesToEmptyRecord(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.Reply
	}{
		{name: "truncated object", reply: llmtest.Reply{Text: `{"fullName": "Jane", "skills": ["Go"`}},
		{name: "prose instead of JSON", reply: llmtest.Reply{Text: "Sorry, I can't help with that."}},
		{name: "json null", reply: llmtest.Reply{Text: "null"}},
		{name: "array instead of object", reply: llmtest.Reply{Text: `["Go", "SQL"]`}},
		{name: "wrong field type", reply: llmtest.Reply{Text: `{"fullName": "Jane", "skills": "Go, SQL"}`}},
		{name: "provider error", reply: llmtest.Reply{Err: errors.New("503 from provider")}},
		{name: "empty response", reply: llmtest.Reply{Text: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := llmtest.NewWithReplies(tt.reply)
			record, err := New(gw, WithLogger(quietLogger())).Extract(context.Background(), sampleResume)

			require.NoError(t, err)
			assertEmptyRecord(t, record)
			assert.Nil(t, record.FullName, "no partial population")
			assert.Equal(t, sampleResume, record.RawResumeText)
			assert.Equal(t, 1, gw.Calls())
		})
	}
}

func TestExtract_UnavailableGatewaySkipsModel(t *testing.T) {
	gw := llmtest.NewUnavailable()

	record, err := New(gw).Extract(context.Background(), sampleResume)
	require.NoError(t, err)
	assertEmptyRecord(t, record)
	assert.Equal(t, 0, gw.Calls())
}

func TestExtract_NilGatewayIsUnconfigured(t *testing.T) {
	record, err := New(nil).Extract(context.Background(), sampleResume)
	require.NoError(t, err)
	assertEmptyRecord(t, record)
}

func TestExtract_EmptyInputFailsFast(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		gw := llmtest.New(sampleResponse)
		record, err := New(gw).Extract(context.Background(), input)

		assert.Nil(t, record)
		assert.True(t, errors.Is(err, ErrEmptyInput))
		assert.Equal(t, 0, gw.Calls())
	}
}

func TestExtract_LogsSchemaViolationsOnParseFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	gw := llmtest.New(`{
		"fullName": "Jane", "email": null, "phone": null, "summary": null,
		"skills": "Go, SQL", "education": null, "certifications": null, "workExperience": null
	}`)
	record, err := New(gw, WithLogger(logger)).Extract(context.Background(), sampleResume)
	require.NoError(t, err)

	assertEmptyRecord(t, record)
	assert.Contains(t, logs.String(), "unparseable output")
	assert.Contains(t, logs.String(), "schema_violations=[skills]")
}

func TestExtract_WarnsOnDecodableButNonconformingResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantWarn bool
		wantLogs []string
	}{
		{
			name: "conforming response",
			response: `{
				"fullName": "Jane", "email": null, "phone": null, "summary": null,
				"skills": ["Go"], "education": null, "certifications": null, "workExperience": null
			}`,
		},
		{
			name:     "missing keys",
			response: `{"fullName": "Jane", "email": null, "phone": null, "summary": null, "skills": ["Go"], "education": null, "workExperience": null}`,
			wantWarn: true,
			wantLogs: []string{"schema_violations=[certifications]"},
		},
		{
			name: "unexpected key",
			response: `{
				"fullName": "Jane", "email": null, "phone": null, "summary": null,
				"skills": ["Go"], "education": null, "certifications": null, "workExperience": null,
				"hobbies": ["chess"]
			}`,
			wantWarn: true,
			wantLogs: []string{"schema_violations=[hobbies]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			record, err := New(llmtest.New(tt.response), WithLogger(logger)).Extract(context.Background(), sampleResume)
			require.NoError(t, err)

			// The decoded record is kept whether or not it conforms.
			assert.Equal(t, "Jane", types.StringValue(record.FullName))
			assert.Equal(t, []string{"Go"}, record.Skills)

			if !tt.wantWarn {
				assert.NotContains(t, logs.String(), "does not match the record schema")
				return
			}
			assert.Contains(t, logs.String(), "does not match the record schema")
			for _, want := range tt.wantLogs {
				assert.Contains(t, logs.String(), want)
			}
		})
	}
}

func TestExtractionPromptKeysMatchRecordSchema(t *testing.T) {
	names := llm.ResumeRecordSchema().FieldNames()
	document := make(map[string]any, len(names))
	for _, name := range names {
		document[name] = nil
	}
	encoded, err := json.Marshal(document)
	require.NoError(t, err)
	assert.NoError(t, schemas.ValidateResumeRecord(string(encoded)),
		"the prompt must ask for exactly the keys the schema requires")
}

func TestExtract_NullSequencesNormalized(t *testing.T) {
	gw := llmtest.New(`{"fullName": "Jane", "skills": null, "workExperience": [{"company": "Acme", "responsibilities": null}]}`)
	record, err := New(gw, WithLogger(quietLogger())).Extract(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, "Jane", types.StringValue(record.FullName))
	assert.Equal(t, []string{}, record.Skills)
	assert.Equal(t, []string{}, record.WorkExperience[0].Responsibilities)
}

func TestParseRecord(t *testing.T) {
	record, err := ParseRecord("  " + sampleResponse + "\n")
	require.NoError(t, err)
	assert.Equal(t, "Go developer", types.StringValue(record.Summary))

	_, err = ParseRecord(`{"fullName": `)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "failed to parse JSON response")

	_, err = ParseRecord("no json here")
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "does not contain a JSON object")
}
