package plugin

import (
	"context"
	"sync"
)

// memoryRepository is an in-memory Repository.
type memoryRepository struct {
	mu      sync.Mutex
	reg     InstalledRegistry
	exists  bool
	putErr  error
	puts    int
	deletes int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{reg: InstalledRegistry{}}
}

func (r *memoryRepository) Load(_ context.Context) (InstalledRegistry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reg.Clone(), nil
}

func (r *memoryRepository) Put(_ context.Context, d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts++
	if r.putErr != nil {
		return r.putErr
	}
	r.reg[d.Name] = d
	r.exists = true
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	_, ok := r.reg[name]
	delete(r.reg, name)
	return ok, nil
}

// recordingLoader is a HostLoader that records the calls it receives.
type recordingLoader struct {
	mu        sync.Mutex
	calls     []string
	roots     []string
	batches   [][]Descriptor
	reloadErr error
}

func (l *recordingLoader) Reload(_ context.Context, root string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, "reload")
	l.roots = append(l.roots, root)
	return l.reloadErr
}

func (l *recordingLoader) RegisterBatch(_ context.Context, descriptors []Descriptor) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, "register")
	l.batches = append(l.batches, descriptors)
	return nil
}

// stubExtractor records extractions and returns fixed entries.
type stubExtractor struct {
	mu      sync.Mutex
	entries []string
	err     error
	sources []string
}

func (e *stubExtractor) ExtractZip(src, _ string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources = append(e.sources, src)
	if e.err != nil {
		return nil, e.err
	}
	return e.entries, nil
}

// stubTransport lets manager tests control transport outcomes.
type stubTransport struct {
	mu           sync.Mutex
	paths        []string
	installErr   error
	uninstallErr error
	installs     []Descriptor
	uninstalls   []RemoveRequest
}

func (s *stubTransport) Install(_ context.Context, d Descriptor) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installs = append(s.installs, d)
	return s.paths, s.installErr
}

func (s *stubTransport) Uninstall(_ context.Context, req RemoveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uninstalls = append(s.uninstalls, req)
	return s.uninstallErr
}
