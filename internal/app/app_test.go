package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/extmgr/internal/adapters/filesystem"
	"github.com/felixgeelhaar/extmgr/internal/adapters/hostloader"
	"github.com/felixgeelhaar/extmgr/internal/adapters/logging"
	"github.com/felixgeelhaar/extmgr/internal/config"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/ports"
	"github.com/felixgeelhaar/extmgr/internal/testutil/mocks"
)

func newTestApp(t *testing.T, mutate func(*config.Config), opts ...Option) (*App, config.Config) {
	t.Helper()

	cfg := config.Default(t.TempDir())
	cfg.TempDir = t.TempDir()
	cfg.DeleteBackoff = 0
	if mutate != nil {
		mutate(&cfg)
	}

	base := []Option{WithLogger(logging.NewNopLogger()), WithOutput(&bytes.Buffer{}, &bytes.Buffer{})}
	a, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	return a, cfg
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default(t.TempDir())
	cfg.Interpreter = ""

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interpreter")
}

func TestApp_CopyInstallListRemove(t *testing.T) {
	t.Parallel()

	fetcher := mocks.NewFetcher(filesystem.NewRealFileSystem())
	fetcher.AddURL("https://example.com/nodes/extra_nodes.py", "NODE_CLASS_MAPPINGS = {}\n")
	fetcher.AddURL("https://example.com/nodes/extra.js", "// ui\n")

	var snapshots []hostloader.Snapshot
	a, cfg := newTestApp(t, nil, WithFetcher(fetcher), WithReloadHook(func(s hostloader.Snapshot) {
		snapshots = append(snapshots, s)
	}))
	ctx := context.Background()

	d := plugin.Descriptor{
		Name:        "extra",
		Author:      "someone",
		URL:         "https://example.com/nodes",
		Files:       []string{"https://example.com/nodes/extra_nodes.py", "https://example.com/nodes/extra.js"},
		InstallType: plugin.InstallCopy,
		JSPath:      "extra",
	}

	res, err := a.Manager().Install(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cfg.PluginsRoot, "extra_nodes.py"),
		filepath.Join(cfg.WebExtensionsDir, "extra", "extra.js"),
	}, res.Paths)
	assert.FileExists(t, filepath.Join(cfg.PluginsRoot, "extra_nodes.py"))
	assert.FileExists(t, cfg.CacheFile)

	entries, err := a.Manager().List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "extra", entries[0].Name)

	snap := a.Modules()
	require.Len(t, snap.Modules, 1)
	assert.Equal(t, "extra_nodes", snap.Modules[0].Name)
	assert.Len(t, snap.Registered, 1)

	_, err = a.Manager().Remove(ctx, d.RemoveRequest())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(cfg.PluginsRoot, "extra_nodes.py"))
	assert.NoFileExists(t, filepath.Join(cfg.WebExtensionsDir, "extra", "extra.js"))
	assert.Empty(t, a.Modules().Modules)

	// Start, install and remove each trigger one reload.
	assert.Len(t, snapshots, 3)
}

func TestApp_CopyInstallOnFreshBaseDir(t *testing.T) {
	t.Parallel()

	cfg := config.Default(t.TempDir())
	cfg.TempDir = t.TempDir()
	fetcher := mocks.NewFetcher(filesystem.NewRealFileSystem())
	fetcher.AddURL("https://example.com/y/script.py", "print('hi')\n")

	a, err := New(cfg, WithLogger(logging.NewNopLogger()), WithOutput(&bytes.Buffer{}, &bytes.Buffer{}), WithFetcher(fetcher))
	require.NoError(t, err)
	require.NoDirExists(t, cfg.PluginsRoot)

	_, err = a.Manager().Install(context.Background(), plugin.Descriptor{
		Name: "script", Files: []string{"https://example.com/y/script.py"}, InstallType: plugin.InstallCopy,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.PluginsRoot, "script.py"))
}

func TestApp_GitInstallUsesConfiguredBinaries(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.SetHandler(func(call ports.CommandCall) (int, error) {
		if len(call.Args) == 4 && call.Args[1] == "clone" {
			dir := filepath.Join(call.Dir, call.Args[3])
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return 1, err
			}
			return 0, os.WriteFile(filepath.Join(dir, "__init__.py"), nil, 0o644)
		}
		return 0, nil
	})

	a, cfg := newTestApp(t, func(c *config.Config) {
		c.GitPath = "/usr/local/bin/git"
		c.Interpreter = "/opt/py/bin/python"
	}, WithRunner(runner))

	_, err := a.Manager().Install(context.Background(), plugin.Descriptor{
		Name: "nodes", Files: []string{"https://github.com/user/nodes"}, InstallType: plugin.InstallGitClone,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/usr/local/bin/git clone https://github.com/user/nodes.git nodes"}, runner.CommandLines())
	assert.DirExists(t, filepath.Join(cfg.PluginsRoot, "nodes"))
	require.Len(t, a.Modules().Modules, 1)
	assert.Equal(t, hostloader.KindPackage, a.Modules().Modules[0].Kind)
}

func TestApp_LazyModeQueuesSetup(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.SetHandler(func(call ports.CommandCall) (int, error) {
		return 0, os.MkdirAll(filepath.Join(call.Dir, call.Args[len(call.Args)-1]), 0o755)
	})

	a, cfg := newTestApp(t, func(c *config.Config) {
		c.LazyMode = true
		c.LazyEntrypoint = "cm-cli"
	}, WithRunner(runner))

	_, err := a.Manager().Install(context.Background(), plugin.Descriptor{
		Name: "nodes", Files: []string{"https://github.com/user/nodes.git"}, InstallType: plugin.InstallGitClone,
	})
	require.NoError(t, err)

	queued, err := a.Deferred()
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, filepath.Join(cfg.PluginsRoot, "nodes"), queued[0].Dir)
	assert.Equal(t, []string{plugin.LazyInstallMarker, "python3", "-m", "cm-cli"}, queued[0].Args)
}

func TestApp_Accessors(t *testing.T) {
	t.Parallel()

	logger := logging.NewNopLogger()
	cfg := config.Default(t.TempDir())
	a, err := New(cfg, WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, cfg, a.Config())
	assert.Same(t, logger, a.Logger())
	assert.Equal(t, cfg.PluginsRoot, a.Manager().Root())
}
