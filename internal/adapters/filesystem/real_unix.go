//go:build !windows

package filesystem

// ClearReadOnly is a no-op on Unix, where directory permissions rather than
// file attributes decide whether an entry can be unlinked.
func (r *RealFileSystem) ClearReadOnly(_ string) error {
	return nil
}
