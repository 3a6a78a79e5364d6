package db

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-agent/internal/types"
)

// ErrNotFound is returned when a package does not exist.
var ErrNotFound = errors.New("package not found")

// List limits for ListPackages.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// PackageInput is everything produced by one package run.
type PackageInput struct {
	PIN            *int
	ResumeText     string
	JobDescription string
	Record         *types.ResumeRecord
	MatchPoints    []string
	Analysis       string
	Letter         string
}

// Package is a stored package run.
type Package struct {
	ID             uuid.UUID           `json:"id"`
	PIN            *int                `json:"pin,omitempty"`
	ResumeText     string              `json:"resume_text"`
	JobDescription string              `json:"job_description"`
	Record         *types.ResumeRecord `json:"record"`
	MatchPoints    []string            `json:"match_points"`
	Analysis       string              `json:"analysis"`
	Letter         string              `json:"letter"`
	CreatedAt      time.Time           `json:"created_at"`
}

// PackageSummary is a lightweight view of a package for listing.
type PackageSummary struct {
	ID            uuid.UUID `json:"id"`
	PIN           *int      `json:"pin,omitempty"`
	CandidateName string    `json:"candidate_name,omitempty"`
	PointCount    int       `json:"point_count"`
	HasLetter     bool      `json:"has_letter"`
	CreatedAt     time.Time `json:"created_at"`
}

// NormalizeLimit clamps a requested list size to (0, MaxListLimit].
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
