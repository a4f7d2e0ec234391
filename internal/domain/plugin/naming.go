package plugin

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const gitSuffix = ".git"

// NormalizeURL strips one trailing slash from a file URL.
func NormalizeURL(rawURL string) string {
	return strings.TrimSuffix(rawURL, "/")
}

// RepoDirName derives the plugin directory name from a git URL: the path
// basename with a ".git" suffix removed.
func RepoDirName(rawURL string) string {
	return strings.TrimSuffix(path.Base(NormalizeURL(rawURL)), gitSuffix)
}

// FileName returns the basename of a copy or archive URL's path. Query and
// fragment are ignored, so install and removal agree on the file name.
func FileName(rawURL string) string {
	u := NormalizeURL(rawURL)
	if parsed, err := url.Parse(u); err == nil && parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	return path.Base(u)
}

// CloneURL returns rawURL with a ".git" suffix appended when missing.
func CloneURL(rawURL string) string {
	u := NormalizeURL(rawURL)
	if strings.HasSuffix(u, gitSuffix) {
		return u
	}
	return u + gitSuffix
}

// ValidateURL checks that rawURL has both a scheme and a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &InvalidURLError{URL: rawURL, Reason: err.Error()}
	}
	if u.Scheme == "" {
		return &InvalidURLError{URL: rawURL, Reason: "missing scheme"}
	}
	if u.Host == "" {
		return &InvalidURLError{URL: rawURL, Reason: "missing host"}
	}
	return nil
}

// isScriptFile reports whether the file name of rawURL ends with one of exts.
func isScriptFile(rawURL string, exts []string) bool {
	name := FileName(rawURL)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// checkDeletePath rejects paths that must never be deleted recursively: an
// empty path, a filesystem root, the plugins root itself or anything outside
// it.
func checkDeletePath(root, target string) string {
	if target == "" {
		return "empty path"
	}
	if isFilesystemRoot(target) {
		return "path is a filesystem root"
	}
	cleanRoot := filepath.Clean(root)
	cleanTarget := filepath.Clean(target)
	if cleanTarget == cleanRoot {
		return "path is the plugins root"
	}
	rel, err := filepath.Rel(cleanRoot, cleanTarget)
	if err != nil || !filepath.IsLocal(rel) {
		return "path escapes the plugins root"
	}
	return ""
}

func isFilesystemRoot(p string) bool {
	if p == "/" || p == `\` {
		return true
	}
	// Drive roots such as "C:/" or "C:\".
	if len(p) == 3 && p[1] == ':' && (p[2] == '/' || p[2] == '\\') {
		return true
	}
	return filepath.IsAbs(p) && filepath.Dir(p) == p
}
