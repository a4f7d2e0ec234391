package ports

import (
	"os"
)

// PathState is the result of probing a plugin path and its disabled sibling.
type PathState int

const (
	// PathAbsent means neither the path nor its disabled sibling exists.
	PathAbsent PathState = iota
	// PathPresent means the path itself exists.
	PathPresent
	// PathDisabled means only the ".disabled" sibling exists.
	PathDisabled
)

// DisabledSuffix marks a plugin file or directory the host must skip.
const DisabledSuffix = ".disabled"

// String returns the string representation of the path state.
func (s PathState) String() string {
	switch s {
	case PathAbsent:
		return "absent"
	case PathPresent:
		return "present"
	case PathDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// FileSystem provides the file system operations the install engine needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFileAtomic replaces path with data so readers see either the old
	// or the new contents, never a partial write.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error
	// AppendLine appends line and a newline to path, creating it if needed.
	AppendLine(path, line string) error
	Exists(path string) bool
	IsDir(path string) bool
	// Probe reports whether path or path+DisabledSuffix exists.
	Probe(path string) PathState
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	// ClearReadOnly drops read-only attributes below path where the
	// platform lets them block deletion. It is a no-op elsewhere.
	ClearReadOnly(path string) error
}
