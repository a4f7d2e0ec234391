package hostloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
)

func setupRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	mk := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	mk("single.py", "NODE_CLASS_MAPPINGS = {}\n")
	mk("pack/__init__.py", "")
	mk("broken/readme.md", "no init")
	mk("old.py.disabled", "")
	mk("retired.disabled/__init__.py", "")
	mk("__pycache__/single.cpython-311.pyc", "")
	mk("notes.txt", "")
	return root
}

func moduleNames(mods []Module) []string {
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name)
	}
	return names
}

func TestDirectoryLoader_Reload(t *testing.T) {
	t.Parallel()

	root := setupRoot(t)
	loader := NewDirectoryLoader()

	require.NoError(t, loader.Reload(context.Background(), root))

	snap := loader.Snapshot()
	assert.Equal(t, root, snap.Root)
	assert.ElementsMatch(t, []string{"single", "pack", "broken"}, moduleNames(snap.Modules))

	failed := snap.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Name)
	assert.Equal(t, KindPackage, failed[0].Kind)
	assert.Equal(t, ErrNoPackageInit.Error(), failed[0].Error)
}

func TestDirectoryLoader_ReloadMissingRoot(t *testing.T) {
	t.Parallel()

	err := NewDirectoryLoader().Reload(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDirectoryLoader_ReloadCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDirectoryLoader().Reload(ctx, setupRoot(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectoryLoader_RegisterBatch(t *testing.T) {
	t.Parallel()

	var hooked []Snapshot
	loader := NewDirectoryLoader(WithReloadHook(func(s Snapshot) {
		hooked = append(hooked, s)
	}))
	ctx := context.Background()
	require.NoError(t, loader.Reload(ctx, setupRoot(t)))

	batch := []plugin.Descriptor{{Name: "pack", Files: []string{"https://example.com/pack"}, InstallType: plugin.InstallGitClone}}
	require.NoError(t, loader.RegisterBatch(ctx, batch))

	snap := loader.Snapshot()
	assert.Equal(t, batch, snap.Registered)
	require.Len(t, hooked, 1)
	assert.Equal(t, batch, hooked[0].Registered)
	assert.Len(t, hooked[0].Modules, 3)
}

func TestDirectoryLoader_ReloadReplacesPreviousScan(t *testing.T) {
	t.Parallel()

	root := setupRoot(t)
	loader := NewDirectoryLoader()
	ctx := context.Background()
	require.NoError(t, loader.Reload(ctx, root))

	require.NoError(t, os.Rename(filepath.Join(root, "single.py"), filepath.Join(root, "single.py.disabled")))
	require.NoError(t, loader.Reload(ctx, root))

	assert.ElementsMatch(t, []string{"pack", "broken"}, moduleNames(loader.Snapshot().Modules))
}
