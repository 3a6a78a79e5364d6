// Package schemas checks model output against the JSON Schema of the extraction
// wire contract. Validation is advisory: callers use it for diagnostics only.
package schemas

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume_record.schema.json
var resumeRecordSchema string

// ErrMalformedDocument is returned when the document is not parseable JSON.
var ErrMalformedDocument = errors.New("document is not valid JSON")

// FieldError is a single violation at a dotted field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Fields returns the failing field paths.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		fields[i] = e.Field
	}
	return fields
}

// SchemaLoadError reports an embedded schema that failed to compile.
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

var compileResumeRecord = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeRecordSchema))
	if err != nil {
		return nil, &SchemaLoadError{Name: "resume_record.schema.json", Cause: err}
	}
	return schema, nil
})

// ValidateResumeRecord checks a JSON document against the ResumeRecord schema.
// It returns nil, a *ValidationError, ErrMalformedDocument or a *SchemaLoadError.
func ValidateResumeRecord(jsonContent string) error {
	schema, err := compileResumeRecord()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		validationErr.Errors = append(validationErr.Errors, FieldError{Field: fieldPath(desc), Message: desc.Description()})
	}
	return validationErr
}

// fieldPath reports required and unexpected keys at the key itself rather than
// at the enclosing object.
func fieldPath(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if field == "" {
		field = "(root)"
	}
	switch desc.Type() {
	case "required", "additional_property_not_allowed":
		property, _ := desc.Details()["property"].(string)
		if property == "" {
			return field
		}
		if field == "(root)" {
			return property
		}
		return field + "." + property
	}
	return field
}
