// Package hostloader rescans the plugins directory the way the host
// application discovers plugin modules at startup.
package hostloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/extmgr/internal/adapters/logging"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/ports"
)

const (
	packageInitFile = "__init__.py"
	bytecodeDir     = "__pycache__"
	moduleExt       = ".py"
)

// ErrNoPackageInit indicates a plugin directory lacks __init__.py.
var ErrNoPackageInit = errors.New("directory has no " + packageInitFile)

// ModuleKind distinguishes single-file modules from package directories.
type ModuleKind string

const (
	// KindFile is a single .py module.
	KindFile ModuleKind = "file"
	// KindPackage is a directory with an __init__.py.
	KindPackage ModuleKind = "package"
)

// Module is one loadable entry found by a rescan.
type Module struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Kind     ModuleKind    `json:"kind"`
	Loaded   bool          `json:"loaded"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Snapshot is the outcome of the most recent rescan and registration.
type Snapshot struct {
	Root       string              `json:"root"`
	ScannedAt  time.Time           `json:"scanned_at"`
	Modules    []Module            `json:"modules"`
	Registered []plugin.Descriptor `json:"registered"`
}

// Failed returns the modules that could not be loaded.
func (s Snapshot) Failed() []Module {
	var out []Module
	for _, m := range s.Modules {
		if !m.Loaded {
			out = append(out, m)
		}
	}
	return out
}

// DirectoryLoader implements plugin.HostLoader by scanning the plugins root.
type DirectoryLoader struct {
	mu       sync.RWMutex
	snapshot Snapshot
	logger   ports.Logger
	now      func() time.Time
	onReload func(Snapshot)
}

// Option configures a DirectoryLoader.
type Option func(*DirectoryLoader)

// WithLogger sets the logger used for the load report.
func WithLogger(l ports.Logger) Option {
	return func(d *DirectoryLoader) {
		d.logger = l
	}
}

// WithReloadHook registers a function called with every new snapshot after
// RegisterBatch.
func WithReloadHook(fn func(Snapshot)) Option {
	return func(d *DirectoryLoader) {
		d.onReload = fn
	}
}

// NewDirectoryLoader creates a loader.
func NewDirectoryLoader(opts ...Option) *DirectoryLoader {
	d := &DirectoryLoader{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reload rescans root. Entries named __pycache__, entries ending in
// ".disabled" and files other than .py modules are skipped.
func (d *DirectoryLoader) Reload(ctx context.Context, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read plugins directory %s: %w", root, err)
	}

	modules := make([]Module, 0, len(entries))
	for _, entry := range entries {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := entry.Name()
		if name == bytecodeDir || strings.HasSuffix(name, ports.DisabledSuffix) {
			continue
		}
		path := filepath.Join(root, name)
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			isDir = statErr == nil && info.IsDir()
		}
		if !isDir && filepath.Ext(name) != moduleExt {
			continue
		}
		modules = append(modules, d.load(path, name, isDir))
	}

	d.mu.Lock()
	d.snapshot = Snapshot{Root: root, ScannedAt: d.now(), Modules: modules}
	d.mu.Unlock()

	d.report(ctx, modules)
	return nil
}

func (d *DirectoryLoader) load(path, name string, isDir bool) Module {
	start := d.now()
	m := Module{Name: strings.TrimSuffix(name, moduleExt), Path: path, Kind: KindFile}

	if isDir {
		m.Name = name
		m.Kind = KindPackage
		info, err := os.Stat(filepath.Join(path, packageInitFile))
		switch {
		case err != nil:
			m.Error = ErrNoPackageInit.Error()
		case info.IsDir():
			m.Error = packageInitFile + " is a directory"
		default:
			m.Loaded = true
		}
	} else if _, err := os.Stat(path); err != nil {
		m.Error = err.Error()
	} else {
		m.Loaded = true
	}

	m.Duration = d.now().Sub(start)
	return m
}

// report logs the modules slowest first, the order the host prints its
// import times in.
func (d *DirectoryLoader) report(ctx context.Context, modules []Module) {
	logger := d.log(ctx)
	sorted := append([]Module(nil), modules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Duration > sorted[j].Duration
	})
	for _, m := range sorted {
		if m.Loaded {
			logger.Debug(ctx, "module loaded", ports.F("module", m.Path), ports.F("duration", m.Duration))
			continue
		}
		logger.Warn(ctx, "module import failed", ports.F("module", m.Path), ports.F("duration", m.Duration), ports.F("reason", m.Error))
	}
}

// RegisterBatch records the installed descriptors alongside the last scan.
func (d *DirectoryLoader) RegisterBatch(ctx context.Context, descriptors []plugin.Descriptor) error {
	d.mu.Lock()
	d.snapshot.Registered = append([]plugin.Descriptor(nil), descriptors...)
	snap := d.snapshotLocked()
	hook := d.onReload
	d.mu.Unlock()

	d.log(ctx).Info(ctx, "plugins registered", ports.F("modules", len(snap.Modules)),
		ports.F("failed", len(snap.Failed())), ports.F("installed", len(descriptors)))
	if hook != nil {
		hook(snap)
	}
	return nil
}

// Snapshot returns a copy of the latest scan.
func (d *DirectoryLoader) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

func (d *DirectoryLoader) snapshotLocked() Snapshot {
	s := d.snapshot
	s.Modules = append([]Module(nil), d.snapshot.Modules...)
	s.Registered = append([]plugin.Descriptor(nil), d.snapshot.Registered...)
	return s
}

func (d *DirectoryLoader) log(ctx context.Context) ports.Logger {
	if l := ports.LoggerFromContext(ctx); l != nil {
		return l
	}
	if d.logger != nil {
		return d.logger
	}
	return logging.NewNopLogger()
}

// Ensure DirectoryLoader implements plugin.HostLoader.
var _ plugin.HostLoader = (*DirectoryLoader)(nil)
