// Package types provides type definitions for structured data used throughout the cover-letter-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MaxMatchPoints is the largest number of selling points kept from a match analysis.
const MaxMatchPoints = 5

// ResumeRecord is the structured representation extracted from raw résumé text.
// Scalar fields are nil when the model could not determine them.
type ResumeRecord struct {
	FullName       *string               `json:"fullName"`
	Email          *string               `json:"email"`
	Phone          *string               `json:"phone"`
	Summary        *string               `json:"summary"`
	Skills         []string              `json:"skills"`
	Education      []string              `json:"education"`
	Certifications []string              `json:"certifications"`
	WorkExperience []WorkExperienceEntry `json:"workExperience"`
	RawResumeText  string                `json:"rawResumeText,omitempty"`
}

// WorkExperienceEntry is a single position listed on a résumé
type WorkExperienceEntry struct {
	JobTitle         *string  `json:"jobTitle"`
	Company          *string  `json:"company"`
	StartDate        *string  `json:"startDate"`
	EndDate          *string  `json:"endDate"`
	Responsibilities []string `json:"responsibilities"`
}

// EmptyResumeRecord returns the degraded record used whenever extraction cannot
// produce a result: every scalar unset and every sequence empty.
func EmptyResumeRecord() *ResumeRecord {
	r := &ResumeRecord{}
	r.Normalize()
	return r
}

// Normalize replaces nil sequences with empty ones, recursively.
func (r *ResumeRecord) Normalize() {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Education == nil {
		r.Education = []string{}
	}
	if r.Certifications == nil {
		r.Certifications = []string{}
	}
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperienceEntry{}
	}
	for i := range r.WorkExperience {
		if r.WorkExperience[i].Responsibilities == nil {
			r.WorkExperience[i].Responsibilities = []string{}
		}
	}
}

// IsEmpty reports whether the record carries no extracted data.
// RawResumeText is not considered.
func (r *ResumeRecord) IsEmpty() bool {
	return r.FullName == nil && r.Email == nil && r.Phone == nil && r.Summary == nil &&
		len(r.Skills) == 0 && len(r.Education) == 0 && len(r.Certifications) == 0 &&
		len(r.WorkExperience) == 0
}

// Clone returns a deep copy so callers can't mutate shared state.
func (r *ResumeRecord) Clone() *ResumeRecord {
	if r == nil {
		return nil
	}
	c := &ResumeRecord{
		FullName:       cloneString(r.FullName),
		Email:          cloneString(r.Email),
		Phone:          cloneString(r.Phone),
		Summary:        cloneString(r.Summary),
		Skills:         cloneStrings(r.Skills),
		Education:      cloneStrings(r.Education),
		Certifications: cloneStrings(r.Certifications),
		RawResumeText:  r.RawResumeText,
	}
	if r.WorkExperience != nil {
		c.WorkExperience = make([]WorkExperienceEntry, len(r.WorkExperience))
		for i, w := range r.WorkExperience {
			c.WorkExperience[i] = WorkExperienceEntry{
				JobTitle:         cloneString(w.JobTitle),
				Company:          cloneString(w.Company),
				StartDate:        cloneString(w.StartDate),
				EndDate:          cloneString(w.EndDate),
				Responsibilities: cloneStrings(w.Responsibilities),
			}
		}
	}
	return c
}

// StringValue dereferences an optional scalar, returning "" when unset.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
