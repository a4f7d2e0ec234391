// Package validation guards user input that reaches the extension manager
// from outside the process, such as MCP tool calls and command line flags.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Common validation errors.
var (
	ErrEmptyInput        = errors.New("input cannot be empty")
	ErrInvalidPluginName = errors.New("invalid plugin name")
	ErrInvalidURL        = errors.New("invalid URL")
	ErrPathTraversal     = errors.New("path traversal detected")
	ErrInvalidPath       = errors.New("invalid path")
	ErrCommandInjection  = errors.New("potential command injection detected")
)

const (
	maxNameLength = 256
	maxURLLength  = 2048
)

var (
	// sourceURLPatterns match the locations plugins are fetched from.
	sourceURLPatterns = []*regexp.Regexp{
		// https://github.com/user/repo(.git), https://host/path/file.zip
		regexp.MustCompile(`^https?://[a-zA-Z0-9.-]+(:[0-9]+)?/[a-zA-Z0-9_./~%+-]*$`),
		// ssh://git@github.com/user/repo.git
		regexp.MustCompile(`^ssh://[a-zA-Z0-9@.-]+(:[0-9]+)?/[a-zA-Z0-9_./-]+$`),
	}

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidatePluginName checks a registry key. Names may contain spaces, as
// catalog titles often do, but no control characters or path separators.
func ValidatePluginName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyInput
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: plugin name too long", ErrInvalidPluginName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidPluginName, name)
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidPluginName, name)
	}
	return nil
}

// ValidateSourceURL checks a git, file or archive URL.
func ValidateSourceURL(u string) error {
	if u == "" {
		return ErrEmptyInput
	}
	if len(u) > maxURLLength {
		return fmt.Errorf("%w: URL too long (max %d characters)", ErrInvalidURL, maxURLLength)
	}
	if strings.ContainsRune(u, '\x00') {
		return fmt.Errorf("%w: URL contains null byte", ErrInvalidURL)
	}
	if containsShellMeta(u) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, u)
	}
	for _, pattern := range sourceURLPatterns {
		if pattern.MatchString(u) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q must be an HTTP(S) or SSH URL", ErrInvalidURL, u)
}

// ValidateSourceURLs checks every URL and reports the first invalid one
// with its index.
func ValidateSourceURLs(urls []string) error {
	if len(urls) == 0 {
		return ErrEmptyInput
	}
	for i, u := range urls {
		if err := ValidateSourceURL(u); err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidateRelativePath checks a sub directory such as js_path. Empty is
// allowed.
func ValidateRelativePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}
	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q must be relative", ErrInvalidPath, path)
	}
	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}

	// URL-encoded traversal
	lower := strings.ToLower(path)
	return strings.Contains(lower, "%2e%2e")
}
