// Package registry persists the installed plugin registry as a JSON cache
// file.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/extmgr/internal/adapters/filesystem"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// DefaultFileName is the cache file name used when none is configured.
const DefaultFileName = "installed_plugins_cache.json"

// JSONRepository implements plugin.Repository on a JSON object mapping
// plugin names to descriptors. Every mutation rewrites the whole file
// through a temporary file and a rename while holding an advisory lock, so
// concurrent writers never lose updates and readers never see partial
// contents.
type JSONRepository struct {
	path string
	fs   ports.FileSystem
	mu   sync.Mutex
}

// Option configures a JSONRepository.
type Option func(*JSONRepository)

// WithFileSystem replaces the file system used for reads and writes.
func WithFileSystem(fsys ports.FileSystem) Option {
	return func(r *JSONRepository) {
		r.fs = fsys
	}
}

// NewJSONRepository creates a repository backed by the file at path.
func NewJSONRepository(path string, opts ...Option) *JSONRepository {
	r := &JSONRepository{
		path: path,
		fs:   filesystem.NewRealFileSystem(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the cache file location.
func (r *JSONRepository) Path() string {
	return r.path
}

// Load reads the registry. A missing file is an empty registry.
func (r *JSONRepository) Load(_ context.Context) (plugin.InstalledRegistry, error) {
	reg, _, err := r.read()
	return reg, err
}

// Put stores d under its name.
func (r *JSONRepository) Put(ctx context.Context, d plugin.Descriptor) error {
	return r.update(ctx, true, func(reg plugin.InstalledRegistry) bool {
		reg[d.Name] = d
		return true
	})
}

// Delete removes name and reports whether it was present. A missing cache
// file is not created.
func (r *JSONRepository) Delete(ctx context.Context, name string) (bool, error) {
	var removed bool
	err := r.update(ctx, false, func(reg plugin.InstalledRegistry) bool {
		if _, ok := reg[name]; !ok {
			return false
		}
		delete(reg, name)
		removed = true
		return true
	})
	return removed, err
}

// update runs a read-modify-write cycle under the in-process mutex and the
// file lock. fn reports whether it changed the registry. When create is
// false and the cache file does not exist, nothing is written.
func (r *JSONRepository) update(_ context.Context, create bool, fn func(plugin.InstalledRegistry) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	unlock, err := lockFile(r.path + ".lock")
	if err != nil {
		return fmt.Errorf("lock registry: %w", err)
	}
	defer unlock()

	reg, exists, err := r.read()
	if err != nil {
		return err
	}
	if !exists && !create {
		return nil
	}
	if !fn(reg) && exists {
		return nil
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := r.fs.WriteFileAtomic(r.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

func (r *JSONRepository) read() (plugin.InstalledRegistry, bool, error) {
	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return plugin.InstalledRegistry{}, false, nil
		}
		return nil, false, fmt.Errorf("failed to read registry: %w", err)
	}

	reg := plugin.InstalledRegistry{}
	if len(data) == 0 {
		return reg, true, nil
	}
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %w", plugin.ErrRegistryCorrupt, r.path, err)
	}
	if reg == nil {
		reg = plugin.InstalledRegistry{}
	}
	return reg, true, nil
}

// Ensure JSONRepository implements plugin.Repository.
var _ plugin.Repository = (*JSONRepository)(nil)
