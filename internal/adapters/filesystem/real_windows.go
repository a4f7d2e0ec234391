//go:build windows

package filesystem

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// ClearReadOnly walks path and drops FILE_ATTRIBUTE_READONLY from every
// entry. Git marks pack files read-only, which makes DeleteFile fail.
func (r *RealFileSystem) ClearReadOnly(path string) error {
	return filepath.WalkDir(path, func(p string, _ fs.DirEntry, err error) error {
		if err != nil {
			// Entries that vanished or cannot be listed are left for the
			// delete attempt to report.
			return nil
		}
		return clearReadOnlyAttr(p)
	})
}

func clearReadOnlyAttr(path string) error {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode path %q: %w", path, err)
	}
	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return nil
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY == 0 {
		return nil
	}
	if err := windows.SetFileAttributes(ptr, attrs&^windows.FILE_ATTRIBUTE_READONLY); err != nil {
		return fmt.Errorf("clear read-only on %q: %w", path, err)
	}
	return nil
}
