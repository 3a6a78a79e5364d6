//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequest_Validate(t *testing.T) {
	negative := -1
	pin := 42
	largest := MaxPIN
	tooLarge := MaxPIN + 1

	tests := []struct {
		name      string
		request   GenerationRequest
		wantField string
	}{
		{
			name:    "valid request",
			request: GenerationRequest{ResumeText: "Java Developer", JobDescription: "Senior Java Engineer"},
		},
		{
			name:    "valid request with pin",
			request: GenerationRequest{ResumeText: "Java Developer", JobDescription: "Senior Java Engineer", PIN: &pin},
		},
		{
			name:      "empty resume",
			request:   GenerationRequest{ResumeText: "", JobDescription: "Senior Java Engineer"},
			wantField: "resume_text",
		},
		{
			name:      "blank resume",
			request:   GenerationRequest{ResumeText: "  \n\t", JobDescription: "Senior Java Engineer"},
			wantField: "resume_text",
		},
		{
			name:      "empty job description",
			request:   GenerationRequest{ResumeText: "Java Developer"},
			wantField: "job_description",
		},
		{
			name:      "negative pin",
			request:   GenerationRequest{ResumeText: "Java Developer", JobDescription: "Senior Java Engineer", PIN: &negative},
			wantField: "pin",
		},
		{
			name:    "largest pin",
			request: GenerationRequest{ResumeText: "Java Developer", JobDescription: "Senior Java Engineer", PIN: &largest},
		},
		{
			name:      "pin beyond INTEGER range",
			request:   GenerationRequest{ResumeText: "Java Developer", JobDescription: "Senior Java Engineer", PIN: &tooLarge},
			wantField: "pin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Contains(t, verr.Error(), tt.wantField)
		})
	}
}

func TestExtractRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ExtractRequest{ResumeText: "text"}).Validate())

	err := (&ExtractRequest{}).Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "resume_text", verr.Field)
	assert.Equal(t, "must not be empty", verr.Message)

	tooLarge := MaxPIN + 1
	err = (&ExtractRequest{ResumeText: "text", PIN: &tooLarge}).Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "pin", verr.Field)
	assert.Equal(t, "must be <= 2147483647", verr.Message)
}
