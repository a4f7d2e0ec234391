// Package command provides the subprocess runner used for git, pip and
// plugin hook scripts.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"

	"github.com/felixgeelhaar/extmgr/internal/adapters/logging"
	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// StderrPrefix marks stderr lines in the combined console output.
const StderrPrefix = "[!] "

// StreamRunner executes commands and streams stdout and stderr line by line
// to its writers while the process runs.
type StreamRunner struct {
	stdout   io.Writer
	stderr   io.Writer
	logger   ports.Logger
	encoding encoding.Encoding

	// mu keeps a line from one stream from splitting a line of the other.
	mu sync.Mutex
}

// Option configures a StreamRunner.
type Option func(*StreamRunner)

// WithStdout sets the destination for the child's stdout lines.
func WithStdout(w io.Writer) Option {
	return func(r *StreamRunner) {
		r.stdout = w
	}
}

// WithStderr sets the destination for the child's stderr lines.
func WithStderr(w io.Writer) Option {
	return func(r *StreamRunner) {
		r.stderr = w
	}
}

// WithLogger sets the logger used for runner diagnostics.
func WithLogger(l ports.Logger) Option {
	return func(r *StreamRunner) {
		r.logger = l
	}
}

// WithEncoding overrides the text encoding used to decode child output.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *StreamRunner) {
		r.encoding = enc
	}
}

// NewStreamRunner creates a runner writing to os.Stdout and os.Stderr and
// decoding with the platform's preferred encoding.
func NewStreamRunner(opts ...Option) *StreamRunner {
	r := &StreamRunner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.encoding == nil {
		r.encoding = PreferredEncoding()
	}
	return r
}

// Run spawns argv[0] with the remaining tokens as arguments and returns its
// exit status once both output streams have been fully drained.
func (r *StreamRunner) Run(ctx context.Context, opts ports.RunOptions, argv ...string) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("empty command")
	}

	if strings.HasPrefix(argv[0], ports.DeferredMarker) {
		r.logger.Warn(ctx, "refusing to execute deferred command", ports.F("command", argv))
		return 0, nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	if opts.Env != nil {
		cmd.Env = opts.Env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("stderr pipe: %w", err)
	}

	r.logger.Debug(ctx, "executing", ports.F("command", argv), ports.F("dir", opts.Dir))
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	var eg errgroup.Group
	eg.Go(func() error {
		return r.drain(stdout, r.writeStdout)
	})
	eg.Go(func() error {
		return r.drain(stderr, r.writeStderr)
	})
	drainErr := eg.Wait()

	waitErr := cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return 0, fmt.Errorf("waiting for %s: %w", argv[0], waitErr)
		}
		return exitErr.ExitCode(), drainErr
	}

	return 0, drainErr
}

func (r *StreamRunner) writeStdout(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.stdout, line+"\n")
}

func (r *StreamRunner) writeStderr(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if isProgressLine(line) {
		if strings.HasPrefix(line, "100%") {
			_, _ = io.WriteString(r.stderr, "\r"+line+"\n")
			return
		}
		_, _ = io.WriteString(r.stderr, "\r"+line)
		return
	}
	_, _ = io.WriteString(r.stderr, StderrPrefix+line+"\n")
}

// Ensure StreamRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*StreamRunner)(nil)
