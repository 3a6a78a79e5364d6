package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cover-letter-agent/internal/types"
)

// SavePackage stores a package run and returns its new ID.
func (db *DB) SavePackage(ctx context.Context, input PackageInput) (uuid.UUID, error) {
	record := input.Record
	if record == nil {
		record = types.EmptyResumeRecord()
	}
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	points := input.MatchPoints
	if points == nil {
		points = []string{}
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO application_packages
		   (id, pin, resume_text, job_description, record, match_points, analysis, letter)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, input.PIN, input.ResumeText, input.JobDescription, recordJSON, points, input.Analysis, input.Letter,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save package: %w", err)
	}
	return id, nil
}

// GetPackage retrieves a package by ID. Returns nil, nil when it does not exist.
func (db *DB) GetPackage(ctx context.Context, id uuid.UUID) (*Package, error) {
	var p Package
	var recordJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, pin, resume_text, job_description, record, match_points, analysis, letter, created_at
		 FROM application_packages WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.PIN, &p.ResumeText, &p.JobDescription, &recordJSON, &p.MatchPoints, &p.Analysis, &p.Letter, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(recordJSON, &record); err != nil {
		return nil, fmt.Errorf("failed to decode stored record: %w", err)
	}
	record.Normalize()
	p.Record = &record
	if p.MatchPoints == nil {
		p.MatchPoints = []string{}
	}
	return &p, nil
}

// ListPackages retrieves the most recent packages, newest first.
func (db *DB) ListPackages(ctx context.Context, limit int) ([]PackageSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, pin, COALESCE(record->>'fullName', ''), cardinality(match_points), letter <> '', created_at
		 FROM application_packages ORDER BY created_at DESC LIMIT $1`,
		NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	summaries := []PackageSummary{}
	for rows.Next() {
		var s PackageSummary
		if err := rows.Scan(&s.ID, &s.PIN, &s.CandidateName, &s.PointCount, &s.HasLetter, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return summaries, nil
}

// DeletePackage deletes a package by ID. A missing package yields ErrNotFound.
func (db *DB) DeletePackage(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM application_packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
