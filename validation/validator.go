package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/aemkit/errors"
)

// Validator collects field errors for endpoint arguments.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}
	return appErr
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// PathSegment checks that value is a bare name usable as one repository path
// segment.
func (v *Validator) PathSegment(field, value string) *Validator {
	switch {
	case strings.TrimSpace(value) == "":
		v.AddError(field, "is required")
	case strings.ContainsAny(value, `/\`):
		v.AddError(field, "must be a bare file name")
	case value == "." || value == "..":
		v.AddError(field, "must not be a relative segment")
	}
	return v
}

// RepositoryPath checks that a non-empty repository path has no dot-dot segments.
func (v *Validator) RepositoryPath(field, value string) *Validator {
	if value == "" {
		return v
	}
	for _, seg := range strings.Split(value, "/") {
		if seg == ".." {
			v.AddError(field, "must not contain '..' segments")
			break
		}
	}
	return v
}

// RegularFile checks that path names an existing regular file.
func (v *Validator) RegularFile(field, path string) *Validator {
	if strings.TrimSpace(path) == "" {
		v.AddError(field, "is required")
		return v
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		v.AddError(field, fmt.Sprintf("cannot be read (%v)", err))
	case !info.Mode().IsRegular():
		v.AddError(field, "must be a regular file")
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}
