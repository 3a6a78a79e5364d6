package types

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// MaxPIN is the largest PIN the package history's INTEGER column can hold.
const MaxPIN = math.MaxInt32

// ExtractRequest asks for a résumé to be scanned into a ResumeRecord.
// When PIN is set the result is stored in the résumé cache under it.
type ExtractRequest struct {
	ResumeText string `json:"resume_text" validate:"required,notblank"`
	PIN        *int   `json:"pin,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
}

// GenerationRequest carries the résumé and job description for matching and letter generation.
type GenerationRequest struct {
	ResumeText     string `json:"resume_text" validate:"required,notblank"`
	JobDescription string `json:"job_description" validate:"required,notblank"`
	PIN            *int   `json:"pin,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
}

// Validate validates the ExtractRequest using the validator.
func (r *ExtractRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the GenerationRequest using the validator.
func (r *GenerationRequest) Validate() error {
	return validateStruct(r)
}

// ValidationError signals caller misuse at the orchestration boundary, such as
// an empty résumé or job description.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validateStruct runs the validator and reports the first failing field as a *ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: describeTag(fe)}
	}
	return err
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be empty"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
