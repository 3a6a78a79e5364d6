package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-agent/internal/db"
	"github.com/jonathan/cover-letter-agent/internal/pipeline"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

// maxBodyBytes caps request bodies; résumés and job descriptions are plain text.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse represents the response for /health
type HealthResponse struct {
	Status         string `json:"status"`
	ModelAvailable bool   `json:"model_available"`
	History        bool   `json:"history"`
}

// MatchResponse represents the response for /match
type MatchResponse struct {
	Points []string `json:"points"`
}

// CacheSizeResponse represents the response for GET /cache
type CacheSizeResponse struct {
	Size int `json:"size"`
}

// CachedRecordResponse represents the response for GET /cache/{pin}
type CachedRecordResponse struct {
	PIN    int                 `json:"pin"`
	Record *types.ResumeRecord `json:"record"`
}

// ListPackagesResponse represents the response for GET /packages
type ListPackagesResponse struct {
	Packages []db.PackageSummary `json:"packages"`
	Count    int                 `json:"count"`
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrBadRequest{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// handleExtract scans a résumé into a record, caching it when a pin is given
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	record, err := s.service.Extract(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleMatch returns the résumé points most relevant to the job
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	points, err := s.service.Match(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, MatchResponse{Points: points})
}

// handleCoverLetter runs the two-stage letter chain
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.service.CoverLetter(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handlePackage runs extraction, matching and the letter chain in one call
func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.service.Package(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handlePackageStream runs a package and streams progress as Server-Sent Events.
// Validation happens before the stream opens so bad input still gets a 400.
func (s *Server) handlePackageStream(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.service.PackageStream(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			s.logger.Debug("failed to write progress event", slog.Any("error", err))
		}
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(result)
}

// handleCacheSize reports how many records are cached
func (s *Server) handleCacheSize(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, CacheSizeResponse{Size: s.service.Cache().Size()})
}

// handleClearCache drops every cached record
func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	s.service.Cache().Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleGetCached returns the record cached under a pin
func (s *Server) handleGetCached(w http.ResponseWriter, r *http.Request) {
	pin, err := parsePIN(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	record, ok := s.service.Cache().Get(pin)
	if !ok {
		s.writeError(w, r, &ErrPINNotFound{PIN: pin})
		return
	}
	s.jsonResponse(w, http.StatusOK, CachedRecordResponse{PIN: pin, Record: record})
}

// handleDeleteCached removes the record cached under a pin
func (s *Server) handleDeleteCached(w http.ResponseWriter, r *http.Request) {
	pin, err := parsePIN(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if !s.service.Cache().Delete(pin) {
		s.writeError(w, r, &ErrPINNotFound{PIN: pin})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListPackages lists stored packages, newest first
func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, &ErrBadRequest{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	packages, err := s.service.ListPackages(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if packages == nil {
		packages = []db.PackageSummary{}
	}
	s.jsonResponse(w, http.StatusOK, ListPackagesResponse{Packages: packages, Count: len(packages)})
}

// handleGetPackage returns one stored package
func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, &ErrBadRequest{Field: "id", Message: "must be a UUID"})
		return
	}

	pkg, err := s.service.GetPackage(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pkg)
}

// handleDeletePackage removes one stored package
func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, &ErrBadRequest{Field: "id", Message: "must be a UUID"})
		return
	}

	if err := s.service.DeletePackage(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parsePIN(r *http.Request) (int, error) {
	pin, err := strconv.Atoi(r.PathValue("pin"))
	if err != nil || pin < 0 || pin > types.MaxPIN {
		return 0, &ErrBadRequest{Field: "pin", Message: fmt.Sprintf("must be an integer between 0 and %d", types.MaxPIN)}
	}
	return pin, nil
}
