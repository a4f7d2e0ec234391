//go:build e2e

package framework

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertSuccess asserts that the command succeeded.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Errorf("Expected command to succeed, got exit code %d\nStdout: %s\nStderr: %s",
			r.ExitCode, r.Stdout, r.Stderr)
	}
}

// AssertFailed asserts that the command failed.
func AssertFailed(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Errorf("Expected command to fail, but it succeeded\nStdout: %s", r.Stdout)
	}
}

// AssertExitCode asserts the expected exit code.
func AssertExitCode(t *testing.T, r *Result, expected int) {
	t.Helper()
	if r.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStdout: %s\nStderr: %s",
			expected, r.ExitCode, r.Stdout, r.Stderr)
	}
}

// AssertStdoutContains asserts that stdout contains the expected substring.
func AssertStdoutContains(t *testing.T, r *Result, expected string) {
	t.Helper()
	if !strings.Contains(r.Stdout, expected) {
		t.Errorf("Expected stdout to contain %q, but got:\n%s", expected, r.Stdout)
	}
}

// AssertStderrContains asserts that stderr contains the expected substring.
func AssertStderrContains(t *testing.T, r *Result, expected string) {
	t.Helper()
	if !strings.Contains(r.Stderr, expected) {
		t.Errorf("Expected stderr to contain %q, but got:\n%s", expected, r.Stderr)
	}
}

// AssertFileExists asserts that a file exists below the host directory.
func AssertFileExists(t *testing.T, env *Environment, path string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(env.BaseDir(), path)); os.IsNotExist(err) {
		t.Errorf("Expected file %s to exist", path)
	}
}

// AssertFileNotExists asserts that nothing exists at path below the host
// directory.
func AssertFileNotExists(t *testing.T, env *Environment, path string) {
	t.Helper()
	if _, err := os.Lstat(filepath.Join(env.BaseDir(), path)); !os.IsNotExist(err) {
		t.Errorf("Expected %s to not exist", path)
	}
}

// AssertFileContains asserts that a file contains the expected substring.
func AssertFileContains(t *testing.T, env *Environment, path, expected string) {
	t.Helper()
	content := env.ReadFile(path)
	if !strings.Contains(content, expected) {
		t.Errorf("Expected %s to contain %q, but got:\n%s", path, expected, content)
	}
}
