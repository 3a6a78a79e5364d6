// Package pipeline is the orchestration boundary in front of extraction, matching
// and cover-letter generation. It validates requests, wires the résumé cache and
// optional package history, and runs the full package concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cover-letter-agent/internal/cache"
	"github.com/jonathan/cover-letter-agent/internal/coverletter"
	"github.com/jonathan/cover-letter-agent/internal/db"
	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/matching"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

// ErrNoStore is returned by history lookups when no database is configured.
var ErrNoStore = errors.New("package history is not configured")

// ErrPackageNotFound is returned when a stored package does not exist.
var ErrPackageNotFound = errors.New("package not found")

// Step names reported through ProgressCallback.
const (
	StepExtract     = "extract"
	StepMatch       = "match"
	StepCoverLetter = "cover_letter"
	StepPersist     = "persist"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. It may be called
// from several goroutines during Package.
type ProgressCallback func(event ProgressEvent)

// PackageStore persists package runs. *db.DB implements it.
type PackageStore interface {
	SavePackage(ctx context.Context, input db.PackageInput) (uuid.UUID, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*db.Package, error)
	ListPackages(ctx context.Context, limit int) ([]db.PackageSummary, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
}

// PackageResult is the output of a package run.
type PackageResult struct {
	ID          *uuid.UUID          `json:"id,omitempty"`
	Record      *types.ResumeRecord `json:"record"`
	MatchPoints []string            `json:"match_points"`
	Analysis    string              `json:"analysis"`
	Letter      string              `json:"letter"`
	State       coverletter.State   `json:"state"`
}

// Service runs the application-package operations.
type Service struct {
	gateway    llm.Gateway
	extractor  *extraction.Extractor
	analyzer   *matching.Analyzer
	composer   *coverletter.Composer
	cache      *cache.ResumeCache
	store      PackageStore
	logger     *slog.Logger
	onProgress ProgressCallback
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the résumé cache. Without it a fresh in-memory cache is used.
func WithCache(c *cache.ResumeCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithStore enables package history.
func WithStore(store PackageStore) Option {
	return func(s *Service) { s.store = store }
}

// WithLogger sets the logger passed down to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressCallback) Option {
	return func(s *Service) { s.onProgress = fn }
}

// New creates a Service around gateway. A nil gateway is treated as unconfigured.
func New(gateway llm.Gateway, opts ...Option) *Service {
	if gateway == nil {
		gateway = llm.Unconfigured{}
	}
	s := &Service{gateway: gateway, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithLogger(s.logger))
	}
	s.extractor = extraction.New(gateway, extraction.WithLogger(s.logger))
	s.analyzer = matching.New(gateway, matching.WithLogger(s.logger))
	s.composer = coverletter.New(gateway, coverletter.WithLogger(s.logger))
	return s
}

// ModelAvailable reports whether generation can reach a model.
func (s *Service) ModelAvailable() bool {
	return s.gateway.Available()
}

// HistoryEnabled reports whether a package store is configured.
func (s *Service) HistoryEnabled() bool {
	return s.store != nil
}

// Cache returns the résumé cache.
func (s *Service) Cache() *cache.ResumeCache {
	return s.cache
}

// Extract scans the résumé into a ResumeRecord and, when a PIN is given, stores
// it in the cache.
func (s *Service) Extract(ctx context.Context, req types.ExtractRequest) (*types.ResumeRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, err := s.extract(ctx, req.ResumeText, newReporter(s.onProgress))
	if err != nil {
		return nil, err
	}
	if req.PIN != nil {
		s.remember(*req.PIN, record)
	}
	return record, nil
}

// Match returns up to types.MaxMatchPoints résumé points relevant to the job.
func (s *Service) Match(ctx context.Context, req types.GenerationRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.match(ctx, req.ResumeText, req.JobDescription, newReporter(s.onProgress)), nil
}

// CoverLetter runs the two-stage letter chain.
func (s *Service) CoverLetter(ctx context.Context, req types.GenerationRequest) (coverletter.Result, error) {
	if err := req.Validate(); err != nil {
		return coverletter.Result{}, err
	}
	return s.coverLetter(ctx, req.ResumeText, req.JobDescription, newReporter(s.onProgress)), nil
}

// Package runs extraction, matching and the letter chain concurrently, caches the
// record under the request PIN and, when history is enabled, stores the run.
// Component failures degrade inside each branch, so only validation fails the call.
func (s *Service) Package(ctx context.Context, req types.GenerationRequest) (*PackageResult, error) {
	return s.runPackage(ctx, req, s.onProgress)
}

// PackageStream is Package with progress reported to onProgress instead of the
// service-wide callback.
func (s *Service) PackageStream(ctx context.Context, req types.GenerationRequest, onProgress ProgressCallback) (*PackageResult, error) {
	return s.runPackage(ctx, req, onProgress)
}

func (s *Service) runPackage(ctx context.Context, req types.GenerationRequest, onProgress ProgressCallback) (*PackageResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	progress := newReporter(onProgress)

	var (
		record *types.ResumeRecord
		points []string
		letter coverletter.Result
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.extract(gCtx, req.ResumeText, progress)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
		record = r
		return nil
	})
	g.Go(func() error {
		points = s.match(gCtx, req.ResumeText, req.JobDescription, progress)
		return nil
	})
	g.Go(func() error {
		letter = s.coverLetter(gCtx, req.ResumeText, req.JobDescription, progress)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.PIN != nil {
		s.remember(*req.PIN, record)
	}

	result := &PackageResult{
		Record:      record,
		MatchPoints: points,
		Analysis:    letter.Analysis,
		Letter:      letter.Letter,
		State:       letter.State,
	}

	if s.store != nil {
		id, err := s.store.SavePackage(ctx, db.PackageInput{
			PIN:            req.PIN,
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
			Record:         record,
			MatchPoints:    points,
			Analysis:       letter.Analysis,
			Letter:         letter.Letter,
		})
		if err != nil {
			s.logger.Warn("failed to store package", slog.Any("error", err))
		} else {
			result.ID = &id
			progress.emit(StepPersist, "Stored package "+id.String(), nil)
		}
	}

	return result, nil
}

// GetPackage loads a stored package.
func (s *Service) GetPackage(ctx context.Context, id uuid.UUID) (*db.Package, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}
	return p, nil
}

// ListPackages lists stored packages, newest first.
func (s *Service) ListPackages(ctx context.Context, limit int) ([]db.PackageSummary, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ListPackages(ctx, db.NormalizeLimit(limit))
}

// DeletePackage removes a stored package.
func (s *Service) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.DeletePackage(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPackageNotFound, id)
		}
		return err
	}
	return nil
}

// remember caches record under pin. An empty record from a degraded
// extraction keeps whatever is already cached there.
func (s *Service) remember(pin int, record *types.ResumeRecord) {
	s.cache.Update(pin, func(current *types.ResumeRecord) *types.ResumeRecord {
		if record.IsEmpty() && current != nil {
			return current
		}
		return record
	})
}

func (s *Service) extract(ctx context.Context, resumeText string, progress *reporter) (*types.ResumeRecord, error) {
	record, err := s.extractor.Extract(ctx, resumeText)
	if err != nil {
		return nil, err
	}
	progress.emit(StepExtract, "Extracted résumé record", record)
	return record, nil
}

func (s *Service) match(ctx context.Context, resumeText, jobDescription string, progress *reporter) []string {
	points := s.analyzer.Analyze(ctx, resumeText, jobDescription)
	progress.emit(StepMatch, fmt.Sprintf("Found %d match points", len(points)), points)
	return points
}

func (s *Service) coverLetter(ctx context.Context, resumeText, jobDescription string, progress *reporter) coverletter.Result {
	result := s.composer.Run(ctx, resumeText, jobDescription)
	progress.emit(StepCoverLetter, "Drafted cover letter", result)
	return result
}

// reporter serializes progress callbacks from concurrent branches.
type reporter struct {
	mu sync.Mutex
	fn ProgressCallback
}

func newReporter(fn ProgressCallback) *reporter {
	return &reporter{fn: fn}
}

func (r *reporter) emit(step, message string, content any) {
	if r.fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fn(ProgressEvent{Step: step, Message: message, Content: content})
}
