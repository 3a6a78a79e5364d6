//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyResumeRecord(t *testing.T) {
	r := EmptyResumeRecord()
	require.NotNil(t, r)

	assert.Nil(t, r.FullName)
	assert.Nil(t, r.Email)
	assert.Nil(t, r.Phone)
	assert.Nil(t, r.Summary)
	assert.NotNil(t, r.Skills)
	assert.NotNil(t, r.Education)
	assert.NotNil(t, r.Certifications)
	assert.NotNil(t, r.WorkExperience)
	assert.True(t, r.IsEmpty())
}

func TestResumeRecord_NormalizeNestedResponsibilities(t *testing.T) {
	r := &ResumeRecord{
		WorkExperience: []WorkExperienceEntry{{JobTitle: StringPtr("Engineer")}},
	}
	r.Normalize()

	require.Len(t, r.WorkExperience, 1)
	assert.NotNil(t, r.WorkExperience[0].Responsibilities)
	assert.Empty(t, r.WorkExperience[0].Responsibilities)
}

func TestResumeRecord_EmptySequencesMarshalAsArrays(t *testing.T) {
	data, err := json.Marshal(EmptyResumeRecord())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"skills":[]`)
	assert.Contains(t, string(data), `"workExperience":[]`)
	assert.Contains(t, string(data), `"fullName":null`)
}

func TestResumeRecord_Clone(t *testing.T) {
	orig := &ResumeRecord{
		FullName: StringPtr("Ada Lovelace"),
		Skills:   []string{"Math"},
		WorkExperience: []WorkExperienceEntry{
			{Company: StringPtr("Analytical Engines"), Responsibilities: []string{"Programs"}},
		},
		RawResumeText: "raw",
	}

	c := orig.Clone()
	*c.FullName = "Someone Else"
	c.Skills[0] = "Poetry"
	c.WorkExperience[0].Responsibilities[0] = "Nothing"

	assert.Equal(t, "Ada Lovelace", *orig.FullName)
	assert.Equal(t, "Math", orig.Skills[0])
	assert.Equal(t, "Programs", orig.WorkExperience[0].Responsibilities[0])
	assert.Equal(t, "raw", c.RawResumeText)
	assert.Nil(t, (*ResumeRecord)(nil).Clone())
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "", StringValue(nil))
	assert.Equal(t, "x", StringValue(StringPtr("x")))
}
