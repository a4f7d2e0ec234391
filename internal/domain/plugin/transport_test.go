package plugin

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/extmgr/internal/ports"
	"github.com/felixgeelhaar/extmgr/internal/testutil/mocks"
)

const testWebDir = "/host/web/extensions"

func newTestGitTransport(runner *mocks.CommandRunner, fsys *mocks.FileSystem) *GitTransport {
	setup := NewPostFetchInstaller(runner, fsys, nil)
	return NewGitTransport(testRoot, "", runner, fsys, setup, newTestUninstaller(runner, fsys), nil)
}

// cloneCreatesDir simulates git by creating the target directory of a clone.
func cloneCreatesDir(fsys *mocks.FileSystem, withRequirements bool) func(ports.CommandCall) (int, error) {
	return func(call ports.CommandCall) (int, error) {
		if len(call.Args) == 4 && call.Args[1] == "clone" {
			dir := filepath.Join(call.Dir, call.Args[3])
			fsys.AddDir(dir)
			if withRequirements {
				fsys.AddFile(filepath.Join(dir, "requirements.txt"), "numpy\n")
			}
		}
		return 0, nil
	}
}

func TestGitTransport_Install(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	runner := mocks.NewCommandRunner()
	runner.SetHandler(cloneCreatesDir(fsys, true))

	dirs, err := newTestGitTransport(runner, fsys).Install(context.Background(), Descriptor{
		Name:        "foo",
		Files:       []string{"https://github.com/user/foo/", "https://github.com/user/bar.git"},
		InstallType: InstallGitClone,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testRoot + "/foo", testRoot + "/bar"}, dirs)
	assert.Equal(t, []string{
		"git clone https://github.com/user/foo.git foo",
		"python3 -m pip install numpy",
		"git clone https://github.com/user/bar.git bar",
		"python3 -m pip install numpy",
	}, runner.CommandLines())

	calls := runner.Calls()
	assert.Equal(t, testRoot, calls[0].Dir)
	assert.Equal(t, testRoot+"/foo", calls[1].Dir)
}

func TestGitTransport_CloneUsesNonInteractiveEnv(t *testing.T) {
	t.Parallel()

	env := safeGitEnv()
	assert.Contains(t, env, "GIT_TERMINAL_PROMPT=0")
	assert.Contains(t, env, "GIT_ASKPASS=")
	for _, kv := range env {
		assert.True(t, strings.Contains(kv, "="), kv)
	}
}

func TestGitTransport_InvalidURLStopsBeforeAnyClone(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	runner := mocks.NewCommandRunner()

	_, err := newTestGitTransport(runner, fsys).Install(context.Background(), Descriptor{
		Name:        "foo",
		Files:       []string{"https://github.com/user/foo", "not-a-url"},
		InstallType: InstallGitClone,
	})

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, runner.Calls(), "no clone starts when any URL is invalid")
}

func TestGitTransport_CloneFailureStopsBatch(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	runner := mocks.NewCommandRunner()
	runner.SetHandler(cloneCreatesDir(fsys, false))
	runner.SetExitCode(128, "git", "clone", "https://github.com/user/bar.git", "bar")

	dirs, err := newTestGitTransport(runner, fsys).Install(context.Background(), Descriptor{
		Name:        "foo",
		Files:       []string{"https://github.com/user/foo", "https://github.com/user/bar", "https://github.com/user/baz"},
		InstallType: InstallGitClone,
	})

	require.Error(t, err)
	var cloneErr *GitCloneError
	require.ErrorAs(t, err, &cloneErr)
	assert.Equal(t, 128, cloneErr.ExitCode)
	assert.True(t, IsTransportError(err))

	assert.Equal(t, []string{testRoot + "/foo"}, dirs)
	assert.True(t, fsys.Exists(testRoot+"/foo"), "earlier clones stay")
	assert.Len(t, runner.Calls(), 2, "baz is never attempted")
}

func TestGitTransport_RunnerError(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddError(errors.New(`exec: "git": executable file not found in $PATH`),
		"git", "clone", "https://github.com/user/foo.git", "foo")

	_, err := newTestGitTransport(runner, mocks.NewFileSystem()).Install(context.Background(), Descriptor{
		Name: "foo", Files: []string{"https://github.com/user/foo"}, InstallType: InstallGitClone,
	})

	assert.True(t, IsTransportError(err))
	assert.ErrorContains(t, err, "executable file not found")
}

func TestGitTransport_SetupQueueFailureStillInstalls(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.FailAppend(errors.New("disk full"))
	runner := mocks.NewCommandRunner()
	runner.SetHandler(cloneCreatesDir(fsys, false))
	setup := NewPostFetchInstaller(runner, fsys, NewDeferredQueue(fsys, "/q.txt"), WithLazyMode(""))
	transport := NewGitTransport(testRoot, "git", runner, fsys, setup, nil, nil)

	dirs, err := transport.Install(context.Background(), Descriptor{
		Name: "foo", Files: []string{"https://github.com/user/foo"}, InstallType: InstallGitClone,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{testRoot + "/foo"}, dirs)
	assert.True(t, fsys.Exists(testRoot+"/foo"))
}

func TestGitTransport_CreatesMissingRoot(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	runner := mocks.NewCommandRunner()
	var rootExisted bool
	runner.SetHandler(func(call ports.CommandCall) (int, error) {
		rootExisted = fsys.IsDir(call.Dir)
		return cloneCreatesDir(fsys, false)(call)
	})

	_, err := newTestGitTransport(runner, fsys).Install(context.Background(), Descriptor{
		Name: "foo", Files: []string{"https://github.com/user/foo"}, InstallType: InstallGitClone,
	})
	require.NoError(t, err)
	assert.True(t, rootExisted, "clone runs inside an existing plugins root")
}

func TestGitTransport_Uninstall(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.AddDir(testRoot + "/foo")
	runner := mocks.NewCommandRunner()

	err := newTestGitTransport(runner, fsys).Uninstall(context.Background(), RemoveRequest{
		Name: "foo", Files: []string{"https://github.com/user/foo.git"}, InstallType: InstallGitClone,
	})
	require.NoError(t, err)
	assert.False(t, fsys.Exists(testRoot+"/foo"))
}

func TestCopyTransport_ScriptInstallAndRemoveTwice(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.AddDir(testRoot)
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL("https://example.com/raw/script.py", "print('hi')")
	transport := NewCopyTransport(testRoot, testWebDir, nil, fetcher, fsys, nil)
	ctx := context.Background()

	paths, err := transport.Install(ctx, Descriptor{
		Name: "script", Files: []string{"https://example.com/raw/script.py/"}, InstallType: InstallCopy,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{testRoot + "/script.py"}, paths)
	assert.True(t, fsys.Exists(testRoot+"/script.py"))

	req := RemoveRequest{Name: "script", Files: []string{"https://example.com/raw/script.py"}, InstallType: InstallCopy}
	require.NoError(t, transport.Uninstall(ctx, req))
	assert.False(t, fsys.Exists(testRoot+"/script.py"))
	require.NoError(t, transport.Uninstall(ctx, req), "removing twice succeeds")
}

func TestCopyTransport_CreatesMissingRoot(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL("https://example.com/raw/script.py", "print('hi')")
	transport := NewCopyTransport(testRoot, testWebDir, nil, fetcher, fsys, nil)

	paths, err := transport.Install(context.Background(), Descriptor{
		Name: "script", Files: []string{"https://example.com/raw/script.py"}, InstallType: InstallCopy,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{testRoot + "/script.py"}, paths)
	assert.True(t, fsys.IsDir(testRoot))
}

func TestCopyTransport_QueryStringURLRoundTrip(t *testing.T) {
	t.Parallel()

	const raw = "https://github.com/user/repo/raw/main/BrevLoadImage.py?raw=true"
	fsys := mocks.NewFileSystem()
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL(raw, "NODE_CLASS_MAPPINGS = {}")
	transport := NewCopyTransport(testRoot, testWebDir, nil, fetcher, fsys, nil)
	ctx := context.Background()

	paths, err := transport.Install(ctx, Descriptor{Name: "brev", Files: []string{raw}, InstallType: InstallCopy})
	require.NoError(t, err)
	assert.Equal(t, []string{testRoot + "/BrevLoadImage.py"}, paths, "classified as a script by its path")

	require.NoError(t, transport.Uninstall(ctx, RemoveRequest{Name: "brev", Files: []string{raw}, InstallType: InstallCopy}))
	assert.False(t, fsys.Exists(testRoot+"/BrevLoadImage.py"))
}

func TestCopyTransport_WebAssetsGoToExtensionsDir(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL("https://example.com/widget.js", "// widget")
	fetcher.AddURL("https://example.com/node.py", "")
	transport := NewCopyTransport(testRoot, testWebDir, nil, fetcher, fsys, nil)
	fsys.AddDir(testRoot)

	paths, err := transport.Install(context.Background(), Descriptor{
		Name:        "widget",
		Files:       []string{"https://example.com/widget.js", "https://example.com/node.py"},
		InstallType: InstallCopy,
		JSPath:      "widgets",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testWebDir + "/widgets/widget.js", testRoot + "/node.py"}, paths)
	assert.True(t, fsys.IsDir(testWebDir+"/widgets"), "js_path is created when absent")
}

func TestCopyTransport_UninstallDisabledSibling(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.AddFile(testWebDir+"/widget.js.disabled", "")
	transport := NewCopyTransport(testRoot, testWebDir, nil, mocks.NewFetcher(fsys), fsys, nil)

	err := transport.Uninstall(context.Background(), RemoveRequest{
		Name: "widget", Files: []string{"https://example.com/widget.js"}, InstallType: InstallCopy,
	})
	require.NoError(t, err)
	assert.False(t, fsys.Exists(testWebDir+"/widget.js.disabled"))
}

func TestCopyTransport_FetchFailureStopsBatch(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.AddDir(testRoot)
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL("https://example.com/a.py", "")
	fetcher.AddError("https://example.com/b.py", errors.New("connection reset"))
	fetcher.AddURL("https://example.com/c.py", "")
	transport := NewCopyTransport(testRoot, testWebDir, nil, fetcher, fsys, nil)

	paths, err := transport.Install(context.Background(), Descriptor{
		Name:        "multi",
		Files:       []string{"https://example.com/a.py", "https://example.com/b.py", "https://example.com/c.py"},
		InstallType: InstallCopy,
	})

	assert.True(t, IsTransportError(err))
	assert.Equal(t, []string{testRoot + "/a.py"}, paths)
	assert.True(t, fsys.Exists(testRoot+"/a.py"), "no cleanup of earlier files")
	assert.Equal(t, []string{"https://example.com/a.py", "https://example.com/b.py"}, fetcher.Fetched())
}

func TestArchiveTransport_Install(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL("https://example.com/pack.zip", "PK")
	extractor := &stubExtractor{entries: []string{"pack"}}
	transport := NewArchiveTransport(testRoot, "/tmp/extmgr", "", fetcher, extractor, fsys, nil)

	paths, err := transport.Install(context.Background(), Descriptor{
		Name: "pack", Files: []string{"https://example.com/pack.zip/"}, InstallType: InstallUnzip,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testRoot + "/pack"}, paths)
	assert.Equal(t, []string{"/tmp/extmgr/" + DefaultTempArchiveName}, extractor.sources)
	assert.False(t, fsys.Exists("/tmp/extmgr/"+DefaultTempArchiveName), "the staged archive is removed")
}

func TestArchiveTransport_ExtractFailure(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fetcher := mocks.NewFetcher(fsys)
	fetcher.AddURL("https://example.com/one.zip", "PK")
	fetcher.AddURL("https://example.com/two.zip", "PK")
	extractor := &stubExtractor{err: errors.New("zip: not a valid zip file")}
	transport := NewArchiveTransport(testRoot, "/tmp", "staged.zip", fetcher, extractor, fsys, nil)

	_, err := transport.Install(context.Background(), Descriptor{
		Name: "pack", Files: []string{"https://example.com/one.zip", "https://example.com/two.zip"}, InstallType: InstallUnzip,
	})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "https://example.com/one.zip", transportErr.URL)
	assert.Equal(t, InstallUnzip, transportErr.Method)
	assert.Len(t, extractor.sources, 1)
	assert.False(t, fsys.Exists("/tmp/staged.zip"))
}

func TestArchiveTransport_UninstallUnsupported(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.AddDir(testRoot + "/pack")
	transport := NewArchiveTransport(testRoot, "/tmp", "", mocks.NewFetcher(fsys), &stubExtractor{}, fsys, nil)

	err := transport.Uninstall(context.Background(), RemoveRequest{Name: "pack", Files: []string{"u"}, InstallType: InstallUnzip})

	assert.True(t, IsUnsupported(err))
	assert.Equal(t, unzipUninstallMessage, err.Error())
	assert.True(t, fsys.Exists(testRoot+"/pack"))
}
