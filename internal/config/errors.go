package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse      = "CONFIG_PARSE"
	ErrCodeConfigFormat     = "CONFIG_FORMAT"
	ErrCodeEnvInvalid       = "ENV_INVALID"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// UserError is a configuration problem reported to the person running the
// manager, with a hint on how to fix it.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_PARSE")
	Message    string
	Context    string // File path, setting name or environment variable
	Suggestion string
	Underlying error
}

// Error returns the message and its location.
func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is matches another UserError with the same code.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns the error with its code and suggestion, one detail per line.
func (e *UserError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// ErrorList accumulates validation errors so all of them are reported at once.
type ErrorList struct {
	errors []*UserError
}

// Add appends a validation failure for field.
func (l *ErrorList) Add(field, message, suggestion string) {
	l.errors = append(l.errors, &UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// Errors returns a copy of the collected errors.
func (l *ErrorList) Errors() []*UserError {
	out := make([]*UserError, len(l.errors))
	copy(out, l.errors)
	return out
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

func (l *ErrorList) Error() string {
	if len(l.errors) == 1 {
		return l.errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d configuration errors:", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
	}
	return b.String()
}

// Format returns every error in its detailed form.
func (l *ErrorList) Format() string {
	parts := make([]string, 0, len(l.errors))
	for _, err := range l.errors {
		parts = append(parts, err.Format())
	}
	return strings.Join(parts, "\n")
}

// AsError returns nil when the list is empty.
func (l *ErrorList) AsError() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

func newParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "failed to parse configuration file",
		Context:    path,
		Suggestion: "Check the file syntax for its format (YAML, TOML or INI).",
		Underlying: err,
	}
}
