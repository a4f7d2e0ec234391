package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	// ErrRegistryCorrupt indicates the registry cache file could not be
	// parsed. The file is left untouched.
	ErrRegistryCorrupt = errors.New("registry cache is corrupt")
	// ErrNotConfigured indicates a manager dependency was not provided.
	ErrNotConfigured = errors.New("plugin manager is not configured")
)

// ValidationError collects multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// Add adds an error message to the collection.
func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

// Addf adds a formatted error message to the collection.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// InvalidURLError indicates a URL is malformed.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}

// IsValidationError returns true if the error is a validation error or an
// invalid URL.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var urlErr *InvalidURLError
	return errors.As(err, &urlErr)
}

// TransportError indicates fetching or extracting a file failed.
type TransportError struct {
	Method InstallType
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("install(%s) failed for %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GitCloneError indicates git exited with a non-zero status.
type GitCloneError struct {
	URL      string
	ExitCode int
}

func (e *GitCloneError) Error() string {
	return fmt.Sprintf("git clone failed for %s: exit status %d", e.URL, e.ExitCode)
}

// IsGitCloneError returns true if the error is a git clone failure.
func IsGitCloneError(err error) bool {
	var cloneErr *GitCloneError
	return errors.As(err, &cloneErr)
}

// IsTransportError returns true if the error is a fetch, extract or clone
// failure.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	return IsGitCloneError(err)
}

// SetupScriptError records a setup command that exited with a non-zero
// status. It is reported, never returned from an install.
type SetupScriptError struct {
	Dir      string
	Command  []string
	ExitCode int
	Err      error
}

func (e *SetupScriptError) Error() string {
	cmd := strings.Join(e.Command, " ")
	if e.Err != nil {
		return fmt.Sprintf("setup command %q in %s failed: %v", cmd, e.Dir, e.Err)
	}
	return fmt.Sprintf("setup command %q in %s exited with status %d", cmd, e.Dir, e.ExitCode)
}

func (e *SetupScriptError) Unwrap() error {
	return e.Err
}

// IsSetupScriptError returns true if the error is a setup command failure.
func IsSetupScriptError(err error) bool {
	var setupErr *SetupScriptError
	return errors.As(err, &setupErr)
}

// SafetyAbortError indicates a derived deletion path was rejected.
type SafetyAbortError struct {
	URL    string
	Path   string
	Reason string
}

func (e *SafetyAbortError) Error() string {
	return fmt.Sprintf("refusing to delete %q derived from %s: %s", e.Path, e.URL, e.Reason)
}

// IsSafetyAbort returns true if the error is a rejected deletion path.
func IsSafetyAbort(err error) bool {
	var safetyErr *SafetyAbortError
	return errors.As(err, &safetyErr)
}

// DeleteRetryExhaustedError indicates a tree could not be removed within
// the allowed number of attempts.
type DeleteRetryExhaustedError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *DeleteRetryExhaustedError) Error() string {
	return fmt.Sprintf("deleting %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *DeleteRetryExhaustedError) Unwrap() error {
	return e.Err
}

// IsDeleteRetryExhausted returns true if the error is an exhausted delete.
func IsDeleteRetryExhausted(err error) bool {
	var deleteErr *DeleteRetryExhaustedError
	return errors.As(err, &deleteErr)
}

// UnsupportedOperationError indicates a transport cannot perform an
// operation.
type UnsupportedOperationError struct {
	Operation   string
	InstallType InstallType
	Message     string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is not supported for install type %s", e.Operation, e.InstallType)
}

// IsUnsupported returns true if the error is an unsupported operation.
func IsUnsupported(err error) bool {
	var unsupportedErr *UnsupportedOperationError
	return errors.As(err, &unsupportedErr)
}
