package plugin

import "context"

// Repository persists the installed plugin registry.
type Repository interface {
	// Load returns the registry. A missing cache yields an empty registry.
	Load(ctx context.Context) (InstalledRegistry, error)

	// Put stores d under its name, replacing any previous entry.
	Put(ctx context.Context, d Descriptor) error

	// Delete removes name. A missing cache is left missing.
	Delete(ctx context.Context, name string) (bool, error)
}

// HostLoader re-registers the host's in-memory plugin registry after the
// plugins directory changed.
type HostLoader interface {
	// Reload rescans root for loadable plugin modules.
	Reload(ctx context.Context, root string) error

	// RegisterBatch hands the installed descriptors to the host.
	RegisterBatch(ctx context.Context, descriptors []Descriptor) error
}

// Transport fetches plugin content and removes it again.
type Transport interface {
	// Install fetches every file of d and returns the local paths that now
	// hold the content.
	Install(ctx context.Context, d Descriptor) ([]string, error)

	// Uninstall removes what Install created for req.
	Uninstall(ctx context.Context, req RemoveRequest) error
}
