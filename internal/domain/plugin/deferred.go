package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// LazyInstallMarker is the first argument of a deferred setup command. The
// leading "#" keeps the command runner from ever executing it directly.
const LazyInstallMarker = ports.DeferredMarker + "LAZY-INSTALL-SCRIPT"

// DeferredCommand is a setup command queued for the host's next startup.
type DeferredCommand struct {
	Dir  string
	Args []string
}

// MarshalJSON encodes the command as a flat array: [dir, arg0, arg1, ...].
func (c DeferredCommand) MarshalJSON() ([]byte, error) {
	row := make([]string, 0, len(c.Args)+1)
	row = append(row, c.Dir)
	row = append(row, c.Args...)
	return json.Marshal(row)
}

// UnmarshalJSON decodes the flat array form written by MarshalJSON.
func (c *DeferredCommand) UnmarshalJSON(data []byte) error {
	var row []string
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if len(row) == 0 {
		return errors.New("deferred command has no directory")
	}
	c.Dir = row[0]
	c.Args = row[1:]
	return nil
}

// DeferredQueue is the append-only file of commands the host runs at its
// next startup.
type DeferredQueue struct {
	fs   ports.FileSystem
	path string
	mu   sync.Mutex
}

// NewDeferredQueue creates a queue backed by the file at path.
func NewDeferredQueue(fsys ports.FileSystem, path string) *DeferredQueue {
	return &DeferredQueue{fs: fsys, path: path}
}

// Path returns the queue file location.
func (q *DeferredQueue) Path() string {
	return q.path
}

// Append writes cmd as one line at the end of the queue.
func (q *DeferredQueue) Append(cmd DeferredCommand) error {
	line, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode deferred command: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.fs.AppendLine(q.path, string(line)); err != nil {
		return fmt.Errorf("append to %s: %w", q.path, err)
	}
	return nil
}

// Entries reads the queued commands in order. A missing file is an empty
// queue.
func (q *DeferredQueue) Entries() ([]DeferredCommand, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := q.fs.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var cmds []DeferredCommand
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cmd DeferredCommand
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", q.path, i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
