// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.CommandRunner.
// Commands exit with status 0 unless a code, an error or a handler was
// registered for them.
type CommandRunner struct {
	mu      sync.RWMutex
	codes   map[string]int
	errors  map[string]error
	handler func(ports.CommandCall) (int, error)
	calls   []ports.CommandCall
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		codes:  make(map[string]int),
		errors: make(map[string]error),
		calls:  make([]ports.CommandCall, 0),
	}
}

// SetExitCode registers the exit status returned for argv.
func (m *CommandRunner) SetExitCode(code int, argv ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[buildKey(argv)] = code
}

// AddError registers an error returned for argv.
func (m *CommandRunner) AddError(err error, argv ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(argv)] = err
}

// SetHandler registers a function consulted for commands without a
// registered code or error. Tests use it to simulate side effects such as
// git creating the clone directory.
func (m *CommandRunner) SetHandler(fn func(ports.CommandCall) (int, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
}

// Run records the call and returns the registered outcome.
func (m *CommandRunner) Run(_ context.Context, opts ports.RunOptions, argv ...string) (int, error) {
	call := ports.CommandCall{Dir: opts.Dir, Args: append([]string(nil), argv...)}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	m.mu.RLock()
	key := buildKey(argv)
	err, hasErr := m.errors[key]
	code, hasCode := m.codes[key]
	handler := m.handler
	m.mu.RUnlock()

	switch {
	case hasErr:
		return 0, err
	case hasCode:
		return code, nil
	case handler != nil:
		return handler(call)
	default:
		return 0, nil
	}
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CommandLines returns every recorded argv joined with spaces.
func (m *CommandRunner) CommandLines() []string {
	calls := m.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, strings.Join(c.Args, " "))
	}
	return lines
}

// Reset clears all registered outcomes and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = make(map[string]int)
	m.errors = make(map[string]error)
	m.handler = nil
	m.calls = make([]ports.CommandCall, 0)
}

func buildKey(argv []string) string {
	return strings.Join(argv, "\x00")
}

// Ensure CommandRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*CommandRunner)(nil)
