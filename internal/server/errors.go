package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonathan/cover-letter-agent/internal/pipeline"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

// ErrPINNotFound indicates no cached record exists for a PIN
type ErrPINNotFound struct {
	PIN int
}

func (e *ErrPINNotFound) Error() string {
	return fmt.Sprintf("no cached record for pin %d", e.PIN)
}

// ErrBadRequest indicates a malformed request body or parameter
type ErrBadRequest struct {
	Field   string
	Message string
}

func (e *ErrBadRequest) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *types.ValidationError
		badRequest *ErrBadRequest
		notFound   *ErrPINNotFound
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, pipeline.ErrPackageNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and writes an ErrorResponse, carrying the
// offending field for validation failures. Server errors are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var validation *types.ValidationError
	var badRequest *ErrBadRequest
	switch {
	case errors.As(err, &validation):
		resp.Field = validation.Field
	case errors.As(err, &badRequest):
		resp.Field = badRequest.Field
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	s.jsonResponse(w, status, resp)
}
