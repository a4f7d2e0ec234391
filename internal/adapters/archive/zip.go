// Package archive extracts downloaded plugin archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// UnsafePathError indicates an archive entry would be written outside the
// destination directory.
type UnsafePathError struct {
	Entry string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("archive entry %q escapes the destination directory", e.Entry)
}

// ZipExtractor implements ports.Extractor for zip files.
type ZipExtractor struct{}

// NewZipExtractor creates a ZipExtractor.
func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

// ExtractZip unpacks src into dest. Every entry is checked before anything
// is written, so an archive with one unsafe entry leaves dest untouched.
func (z *ZipExtractor) ExtractZip(src, dest string) ([]string, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer func() { _ = reader.Close() }()

	top := make(map[string]struct{})
	for _, file := range reader.File {
		name := filepath.FromSlash(file.Name)
		if !filepath.IsLocal(name) {
			return nil, &UnsafePathError{Entry: file.Name}
		}
		first := strings.SplitN(filepath.ToSlash(filepath.Clean(name)), "/", 2)[0]
		top[first] = struct{}{}
	}

	for _, file := range reader.File {
		if err := extractEntry(file, dest); err != nil {
			return nil, err
		}
	}

	entries := make([]string, 0, len(top))
	for name := range top {
		entries = append(entries, name)
	}
	sort.Strings(entries)
	return entries, nil
}

func extractEntry(file *zip.File, dest string) error {
	target := filepath.Join(dest, filepath.FromSlash(file.Name))

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	rc, err := file.Open()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to open zip entry %s: %w", file.Name, err)
	}

	_, err = io.Copy(f, rc)
	_ = rc.Close()
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return closeErr
}

// Ensure ZipExtractor implements ports.Extractor.
var _ ports.Extractor = (*ZipExtractor)(nil)
