// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// RunOptions controls how a command is spawned.
type RunOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env replaces the process environment when non-nil.
	Env []string
}

// CommandCall records a command invocation.
type CommandCall struct {
	Dir  string
	Args []string
}

// CommandRunner spawns external commands and streams their output live.
// It returns the process exit status; err is non-nil only when the process
// could not be started or its output could not be drained.
type CommandRunner interface {
	Run(ctx context.Context, opts RunOptions, argv ...string) (int, error)
}

// DeferredMarker prefixes the first token of a command that must be queued
// for a later startup run rather than executed.
const DeferredMarker = "#"
