//go:build e2e

// Package framework provides the E2E test infrastructure for extmgr.
package framework

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// Environment is an isolated host installation plus a file server that
// plays the role of the remote plugin sources.
type Environment struct {
	t          *testing.T
	rootDir    string
	baseDir    string
	homeDir    string
	binaryPath string

	mu     sync.Mutex
	files  map[string][]byte
	server *httptest.Server
}

var (
	buildOnce  sync.Once
	binaryPath string
	buildErr   error
)

// findProjectRoot locates the project root directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary builds the extmgr binary once per test run.
func buildBinary(t *testing.T) (string, error) {
	buildOnce.Do(func() {
		root, err := findProjectRoot()
		if err != nil {
			buildErr = err
			return
		}

		binaryPath = filepath.Join(os.TempDir(), "extmgr-e2e-test")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/extmgr")
		cmd.Dir = root

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			buildErr = err
			t.Logf("Build stderr: %s", stderr.String())
		}
	})

	return binaryPath, buildErr
}

// NewEnvironment creates a new isolated test environment.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	binary, err := buildBinary(t)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	rootDir := t.TempDir()
	env := &Environment{
		t:          t,
		rootDir:    rootDir,
		baseDir:    filepath.Join(rootDir, "host"),
		homeDir:    filepath.Join(rootDir, "home"),
		binaryPath: binary,
		files:      make(map[string][]byte),
	}
	for _, dir := range []string{env.baseDir, env.homeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	env.server = httptest.NewServer(http.HandlerFunc(env.serve))
	t.Cleanup(env.server.Close)

	return env
}

func (e *Environment) serve(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	data, ok := e.files[r.URL.Path]
	e.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(data)
}

// Publish makes content downloadable at URL(name).
func (e *Environment) Publish(name string, content []byte) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files["/"+name] = content
	return e.URL(name)
}

// URL returns the download URL of a published file.
func (e *Environment) URL(name string) string {
	return e.server.URL + "/" + name
}

// BaseDir returns the host installation directory.
func (e *Environment) BaseDir() string {
	return e.baseDir
}

// PluginsRoot returns the default plugins root of the host.
func (e *Environment) PluginsRoot() string {
	return filepath.Join(e.baseDir, "custom_nodes")
}

// HomeDir returns the path to the simulated home directory.
func (e *Environment) HomeDir() string {
	return e.homeDir
}

// RootDir returns the path to the test root directory.
func (e *Environment) RootDir() string {
	return e.rootDir
}

// BinaryPath returns the path to the built binary.
func (e *Environment) BinaryPath() string {
	return e.binaryPath
}

// WriteFile writes content to a file below the host directory.
func (e *Environment) WriteFile(path, content string) {
	e.t.Helper()

	fullPath := filepath.Join(e.baseDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// FileExists checks if a file exists below the host directory.
func (e *Environment) FileExists(path string) bool {
	_, err := os.Stat(filepath.Join(e.baseDir, path))
	return err == nil
}

// ReadFile reads a file below the host directory.
func (e *Environment) ReadFile(path string) string {
	e.t.Helper()

	content, err := os.ReadFile(filepath.Join(e.baseDir, path))
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
