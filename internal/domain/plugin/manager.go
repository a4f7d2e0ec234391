package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// Result describes a finished install or remove request.
type Result struct {
	OperationID string
	Name        string
	// Paths are the local paths the transport created. Empty for removals.
	Paths   []string
	History []Phase
}

// Manager orchestrates install, remove and list requests: it runs the
// transport, records the registry and triggers the host reload.
type Manager struct {
	repo       Repository
	loader     HostLoader
	transports map[InstallType]Transport
	logger     ports.Logger
	root       string
	newOpID    func() string

	// mu serializes requests that change the plugins directory.
	mu sync.Mutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTransport registers the transport for an install type.
func WithTransport(t InstallType, tr Transport) ManagerOption {
	return func(m *Manager) {
		m.transports[t] = tr
	}
}

// WithHostLoader sets the loader notified after every change.
func WithHostLoader(l HostLoader) ManagerOption {
	return func(m *Manager) {
		m.loader = l
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithOperationIDs replaces the operation id generator.
func WithOperationIDs(fn func() string) ManagerOption {
	return func(m *Manager) {
		m.newOpID = fn
	}
}

// NewManager creates a manager for plugins installed below root.
func NewManager(root string, repo Repository, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:       repo,
		transports: make(map[InstallType]Transport),
		logger:     discardLogger{},
		root:       root,
		newOpID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the plugins root directory.
func (m *Manager) Root() string {
	return m.root
}

// Install fetches d with its transport, records it in the registry and
// reloads the host. When the transport fails the registry is not touched.
func (m *Manager) Install(ctx context.Context, d Descriptor) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	transport, err := m.transport(d.InstallType)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, log, result := m.begin(ctx, "install", d.Name)
	lc, err := NewLifecycle("install", d.Name)
	if err != nil {
		return nil, err
	}
	defer lc.Stop()

	log.Info(ctx, "installing plugin", ports.F("install_type", d.InstallType), ports.F("files", len(d.Files)))
	lc.Advance(EventBegin)

	paths, err := transport.Install(ctx, d)
	result.Paths = paths
	if err != nil {
		return m.fail(ctx, lc, result, err)
	}
	lc.Advance(EventTransferred)

	if err := m.repo.Put(ctx, d); err != nil {
		return m.fail(ctx, lc, result, fmt.Errorf("record %s: %w", d.Name, err))
	}
	lc.Advance(EventRecorded)

	if err := m.reload(ctx); err != nil {
		return m.fail(ctx, lc, result, err)
	}
	lc.Advance(EventReloaded)

	result.History = lc.History()
	log.Info(ctx, "Installation was successful.")
	return result, nil
}

// Remove deletes what the transport of req installed, drops the registry
// entry and reloads the host.
func (m *Manager) Remove(ctx context.Context, req RemoveRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	transport, err := m.transport(req.InstallType)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, log, result := m.begin(ctx, "remove", req.Name)
	lc, err := NewLifecycle("remove", req.Name)
	if err != nil {
		return nil, err
	}
	defer lc.Stop()

	log.Info(ctx, "removing plugin", ports.F("install_type", req.InstallType), ports.F("files", len(req.Files)))
	lc.Advance(EventBegin)

	if err := transport.Uninstall(ctx, req); err != nil {
		return m.fail(ctx, lc, result, err)
	}
	lc.Advance(EventTransferred)

	removed, err := m.repo.Delete(ctx, req.Name)
	if err != nil {
		return m.fail(ctx, lc, result, fmt.Errorf("unrecord %s: %w", req.Name, err))
	}
	if !removed {
		log.Debug(ctx, "plugin was not in the registry")
	}
	lc.Advance(EventRecorded)

	if err := m.reload(ctx); err != nil {
		return m.fail(ctx, lc, result, err)
	}
	lc.Advance(EventReloaded)

	result.History = lc.History()
	log.Info(ctx, "Uninstallation was successful.")
	return result, nil
}

// List returns the installed plugins ordered by name, each annotated with
// the plugins root.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	reg, err := m.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	location := "installed somewhere in " + m.root
	entries := make([]Entry, 0, len(reg))
	for _, d := range reg.Descriptors() {
		entries = append(entries, Entry{Descriptor: d, Path: location})
	}
	return entries, nil
}

// Reload rescans the plugins root and re-registers the installed plugins.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload(ctx)
}

func (m *Manager) reload(ctx context.Context) error {
	log := logFrom(ctx, m.logger)
	if m.loader == nil {
		log.Debug(ctx, "no host loader configured, skipping reload")
		return nil
	}

	if err := m.loader.Reload(ctx, m.root); err != nil {
		return fmt.Errorf("reload plugins: %w", err)
	}
	reg, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload plugins: %w", err)
	}
	if err := m.loader.RegisterBatch(ctx, reg.Descriptors()); err != nil {
		return fmt.Errorf("register plugins: %w", err)
	}
	return nil
}

func (m *Manager) transport(t InstallType) (Transport, error) {
	tr, ok := m.transports[t]
	if !ok {
		return nil, fmt.Errorf("no transport for install type %q: %w", t, ErrNotConfigured)
	}
	return tr, nil
}

func (m *Manager) begin(ctx context.Context, op, name string) (context.Context, ports.Logger, *Result) {
	id := m.newOpID()
	log := logFrom(ctx, m.logger).With(ports.F("op", id), ports.F("action", op), ports.F("plugin", name))
	return ports.ContextWithLogger(ctx, log), log, &Result{OperationID: id, Name: name}
}

func (m *Manager) fail(ctx context.Context, lc *Lifecycle, result *Result, err error) (*Result, error) {
	lc.Fail(err)
	result.History = lc.History()
	logFrom(ctx, m.logger).Error(ctx, "request failed", ports.F("phase", result.History[len(result.History)-2]), ports.Err(err))
	return result, err
}
