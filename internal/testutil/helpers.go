// Package testutil provides test helpers and utilities for extmgr tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTempFile writes content to a file below dir, creating parent
// directories, and returns its path.
func WriteTempFile(t testing.TB, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "failed to create parent of %s", filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "failed to write temp file: %s", filename)
	return path
}

// WriteTempDir creates a subdirectory in dir.
func WriteTempDir(t testing.TB, dir, dirname string) string {
	t.Helper()

	path := filepath.Join(dir, dirname)
	require.NoError(t, os.MkdirAll(path, 0o755), "failed to create temp subdirectory: %s", dirname)
	return path
}

// WritePluginPackage creates a loadable package plugin under root: a
// directory holding an __init__.py.
func WritePluginPackage(t testing.TB, root, name string) string {
	t.Helper()

	dir := WriteTempDir(t, root, name)
	WriteTempFile(t, dir, "__init__.py", "NODE_CLASS_MAPPINGS = {}\n")
	return dir
}

// ZipArchive builds an in-memory zip archive from name → content. Names
// ending in "/" become directory entries.
func ZipArchive(t testing.TB, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err, "failed to add %s to archive", name)
		if name[len(name)-1] == '/' {
			continue
		}
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
