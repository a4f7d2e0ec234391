package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
)

func TestWriteTempFile_CreatesParents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := WriteTempFile(t, dir, "a/b/c.txt", "hello")

	assert.Equal(t, filepath.Join(dir, "a", "b", "c.txt"), path)
	AssertFileContains(t, path, "hello")
	AssertDirExists(t, filepath.Join(dir, "a", "b"))
	AssertNotExists(t, filepath.Join(dir, "missing"))
}

func TestWritePluginPackage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := WritePluginPackage(t, root, "foo")

	AssertDirExists(t, dir)
	AssertFileExists(t, filepath.Join(dir, "__init__.py"))
}

func TestZipArchive(t *testing.T) {
	t.Parallel()

	data := ZipArchive(t, map[string]string{
		"pack/":            "",
		"pack/__init__.py": "x = 1\n",
	})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "pack/", zr.File[0].Name)
	assert.Equal(t, "pack/__init__.py", zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(content))
}

func TestDescriptorBuilder(t *testing.T) {
	t.Parallel()

	b := NewDescriptorBuilder("widget").
		WithFiles("https://example.com/widget.js").
		WithType(plugin.InstallCopy).
		WithJSPath("widgets").
		WithAuthor("alice").
		WithDescription("A widget")

	d := b.Build()
	assert.Equal(t, "widget", d.Name)
	assert.Equal(t, plugin.InstallCopy, d.InstallType)
	assert.Equal(t, []string{"https://example.com/widget.js"}, d.Files)
	assert.NoError(t, d.Validate())

	req := b.RemoveRequest()
	assert.Equal(t, "widget", req.Name)
	assert.Equal(t, "widgets", req.JSPath)

	d.Files[0] = "changed"
	assert.Equal(t, "https://example.com/widget.js", b.Build().Files[0])
}
