package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

const (
	requirementsFile  = "requirements.txt"
	installScriptFile = "install.py"
)

// SetupReport summarizes the setup steps run for one plugin directory.
type SetupReport struct {
	Dir string
	// Deferred is true when the setup was queued instead of run.
	Deferred bool
	// Steps counts the commands that were executed.
	Steps    int
	Failures []*SetupScriptError
}

// OK reports whether every executed step exited with status 0.
func (r SetupReport) OK() bool {
	return len(r.Failures) == 0
}

// PostFetchInstaller runs the setup steps a freshly fetched plugin ships
// with: a package requirements list and an install script.
type PostFetchInstaller struct {
	runner      ports.CommandRunner
	fs          ports.FileSystem
	queue       *DeferredQueue
	logger      ports.Logger
	interpreter string
	lazy        bool
	entrypoint  string
}

// PostFetchOption configures a PostFetchInstaller.
type PostFetchOption func(*PostFetchInstaller)

// WithInterpreter sets the interpreter used for pip and install scripts.
func WithInterpreter(path string) PostFetchOption {
	return func(p *PostFetchInstaller) {
		if path != "" {
			p.interpreter = path
		}
	}
}

// WithLazyMode queues setup for the host's next startup instead of running
// it. entrypoint is the module the host runs for the queued directory.
func WithLazyMode(entrypoint string) PostFetchOption {
	return func(p *PostFetchInstaller) {
		p.lazy = true
		p.entrypoint = entrypoint
	}
}

// WithSetupLogger sets the logger.
func WithSetupLogger(l ports.Logger) PostFetchOption {
	return func(p *PostFetchInstaller) {
		p.logger = l
	}
}

// NewPostFetchInstaller creates an installer that runs setup commands
// through runner and queues deferred ones in queue.
func NewPostFetchInstaller(runner ports.CommandRunner, fsys ports.FileSystem, queue *DeferredQueue, opts ...PostFetchOption) *PostFetchInstaller {
	p := &PostFetchInstaller{
		runner:      runner,
		fs:          fsys,
		queue:       queue,
		logger:      discardLogger{},
		interpreter: "python3",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LazyCommand returns the deferred command queued for dir in lazy mode.
func (p *PostFetchInstaller) LazyCommand(dir string) DeferredCommand {
	args := []string{LazyInstallMarker, p.interpreter}
	if p.entrypoint != "" {
		args = append(args, "-m", p.entrypoint)
	}
	return DeferredCommand{Dir: dir, Args: args}
}

// Run performs the setup of dir. A failing step is logged and collected in
// the report and never stops later steps. The returned error is reserved
// for conditions that make the setup impossible, such as an unreadable
// requirements file. In lazy mode the setup always succeeds: a queue that
// cannot be written is logged and recorded in the report.
func (p *PostFetchInstaller) Run(ctx context.Context, dir string) (SetupReport, error) {
	report := SetupReport{Dir: dir}

	if p.lazy {
		if p.queue == nil {
			return report, fmt.Errorf("lazy setup for %s: %w", dir, ErrNotConfigured)
		}
		cmd := p.LazyCommand(dir)
		if err := p.queue.Append(cmd); err != nil {
			report.Failures = append(report.Failures, &SetupScriptError{Dir: dir, Command: cmd.Args, Err: err})
			logFrom(ctx, p.logger).Error(ctx, "failed to queue deferred setup", ports.F("dir", dir), ports.F("queue", p.queue.Path()), ports.Err(err))
			return report, nil
		}
		report.Deferred = true
		logFrom(ctx, p.logger).Info(ctx, "setup deferred to next startup", ports.F("dir", dir), ports.F("queue", p.queue.Path()))
		return report, nil
	}

	packages, err := p.requirements(dir)
	if err != nil {
		return report, err
	}
	if len(packages) > 0 {
		logFrom(ctx, p.logger).Info(ctx, "installing pip packages", ports.F("dir", dir), ports.F("count", len(packages)))
	}
	for _, pkg := range packages {
		p.step(ctx, &report, p.interpreter, "-m", "pip", "install", pkg)
	}

	if p.fs.Exists(filepath.Join(dir, installScriptFile)) {
		logFrom(ctx, p.logger).Info(ctx, "running install script", ports.F("dir", dir))
		p.step(ctx, &report, p.interpreter, installScriptFile)
	}

	return report, nil
}

func (p *PostFetchInstaller) requirements(dir string) ([]string, error) {
	data, err := p.fs.ReadFile(filepath.Join(dir, requirementsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", requirementsFile, err)
	}

	var packages []string
	for _, line := range strings.Split(string(data), "\n") {
		if pkg := strings.TrimSpace(line); pkg != "" {
			packages = append(packages, pkg)
		}
	}
	return packages, nil
}

func (p *PostFetchInstaller) step(ctx context.Context, report *SetupReport, argv ...string) {
	report.Steps++
	code, err := p.runner.Run(ctx, ports.RunOptions{Dir: report.Dir}, argv...)
	if err == nil && code == 0 {
		return
	}

	failure := &SetupScriptError{Dir: report.Dir, Command: argv, ExitCode: code, Err: err}
	report.Failures = append(report.Failures, failure)
	logFrom(ctx, p.logger).Warn(ctx, "setup step failed", ports.F("dir", report.Dir), ports.F("command", strings.Join(argv, " ")),
		ports.F("exit_code", code), ports.Err(err))
}
