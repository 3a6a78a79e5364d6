package extraction

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when Extract is called without résumé text.
var ErrEmptyInput = errors.New("resume text is empty")

// ParseError represents an error parsing the model response
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
