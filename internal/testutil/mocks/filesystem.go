package mocks

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// FileSystem is a thread-safe in-memory test double for ports.FileSystem
// with fault injection for deletes and appends.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	removeAllFailures map[string]int
	removeAllErr      error
	removeAllCalls    map[string]int
	clearCalls        int
	appendErr         error
	writeErr          error
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:             make(map[string][]byte),
		dirs:              make(map[string]bool),
		removeAllFailures: make(map[string]int),
		removeAllCalls:    make(map[string]int),
	}
}

// AddFile adds a file and its parent directories.
func (m *FileSystem) AddFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = []byte(content)
	m.addParents(path)
}

// AddDir adds a directory and its parents.
func (m *FileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
	m.addParents(path)
}

func (m *FileSystem) addParents(path string) {
	for dir := filepath.Dir(filepath.Clean(path)); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if filepath.Dir(dir) == dir {
			return
		}
	}
}

// FailRemoveAll makes the next times RemoveAll calls for path fail with err.
func (m *FileSystem) FailRemoveAll(path string, times int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeAllFailures[filepath.Clean(path)] = times
	m.removeAllErr = err
}

// FailAppend makes every AppendLine call fail with err.
func (m *FileSystem) FailAppend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr = err
}

// FailWrite makes every WriteFileAtomic call fail with err.
func (m *FileSystem) FailWrite(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// RemoveAllCalls returns how many times RemoveAll was called for path.
func (m *FileSystem) RemoveAllCalls(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.removeAllCalls[filepath.Clean(path)]
}

// ClearReadOnlyCalls returns how many times ClearReadOnly was called.
func (m *FileSystem) ClearReadOnlyCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clearCalls
}

// Paths returns every file and directory, sorted.
func (m *FileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files)+len(m.dirs))
	for p := range m.files {
		out = append(out, p)
	}
	for p := range m.dirs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ReadFile reads a file. Missing files wrap fs.ErrNotExist.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if content, ok := m.files[filepath.Clean(path)]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
}

// WriteFileAtomic stores data at path. The parent directory must exist.
func (m *FileSystem) WriteFileAtomic(path string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if !m.dirs[filepath.Dir(filepath.Clean(path))] {
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrNotExist}
	}
	m.files[filepath.Clean(path)] = append([]byte(nil), data...)
	return nil
}

// AppendLine appends line and a newline, creating parents as needed.
func (m *FileSystem) AppendLine(path, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	key := filepath.Clean(path)
	m.files[key] = append(m.files[key], []byte(line+"\n")...)
	m.addParents(key)
	return nil
}

// Exists checks if a file or directory exists.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := filepath.Clean(path)
	_, isFile := m.files[key]
	return isFile || m.dirs[key]
}

// IsDir checks if path is a directory.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[filepath.Clean(path)]
}

// Probe reports the tri-state of path and its disabled sibling.
func (m *FileSystem) Probe(path string) ports.PathState {
	if m.Exists(path) {
		return ports.PathPresent
	}
	if m.Exists(path + ports.DisabledSuffix) {
		return ports.PathDisabled
	}
	return ports.PathAbsent
}

// MkdirAll creates a directory and its parents.
func (m *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	m.AddDir(path)
	return nil
}

// Remove removes a file or an empty directory.
func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := filepath.Clean(path)
	if _, ok := m.files[key]; ok {
		delete(m.files, key)
		return nil
	}
	if m.dirs[key] {
		if m.hasChildren(key) {
			return fmt.Errorf("remove %s: directory not empty", path)
		}
		delete(m.dirs, key)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
}

// RemoveAll removes path and everything below it, honoring injected
// failures first.
func (m *FileSystem) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := filepath.Clean(path)
	m.removeAllCalls[key]++
	if n := m.removeAllFailures[key]; n > 0 {
		m.removeAllFailures[key] = n - 1
		return m.removeAllErr
	}

	prefix := key + string(filepath.Separator)
	for p := range m.files {
		if p == key || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	for p := range m.dirs {
		if p == key || strings.HasPrefix(p, prefix) {
			delete(m.dirs, p)
		}
	}
	return nil
}

// ClearReadOnly records the call.
func (m *FileSystem) ClearReadOnly(_ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	return nil
}

func (m *FileSystem) hasChildren(dir string) bool {
	prefix := dir + string(filepath.Separator)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for p := range m.dirs {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
