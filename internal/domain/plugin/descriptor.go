// Package plugin installs, tracks and removes host application plugins.
package plugin

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// InstallType selects the transport used to fetch a plugin.
type InstallType string

const (
	// InstallGitClone clones each file URL as a git repository.
	InstallGitClone InstallType = "git-clone"
	// InstallCopy downloads each file URL as a single file.
	InstallCopy InstallType = "copy"
	// InstallUnzip downloads each file URL as a zip archive and extracts it.
	InstallUnzip InstallType = "unzip"
)

// Valid reports whether t is a known install type.
func (t InstallType) Valid() bool {
	switch t {
	case InstallGitClone, InstallCopy, InstallUnzip:
		return true
	default:
		return false
	}
}

// String returns the wire name of the install type.
func (t InstallType) String() string {
	return string(t)
}

// Descriptor is the metadata record of an installable plugin. Field names
// match the install request payload and the registry cache file.
type Descriptor struct {
	Name         string      `json:"name"`
	Author       string      `json:"author,omitempty"`
	URL          string      `json:"url,omitempty"`
	Description  string      `json:"description,omitempty"`
	Files        []string    `json:"files"`
	InstallType  InstallType `json:"install_type"`
	IsSingleFile bool        `json:"is_single_file,omitempty"`
	// JSPath is an optional sub folder of the web extensions directory
	// that receives non-script files of a copy install.
	JSPath string `json:"js_path,omitempty"`
}

// Validate checks the descriptor before any transfer starts.
func (d Descriptor) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(d.Name) == "" {
		v.Add("name is required")
	}
	validateCommon(v, d.Files, d.InstallType, d.JSPath)
	if v.HasErrors() {
		return v
	}
	return nil
}

// RemoveRequest identifies an installed plugin and the transport that
// installed it.
type RemoveRequest struct {
	Name        string      `json:"name"`
	Files       []string    `json:"files"`
	InstallType InstallType `json:"install_type"`
	JSPath      string      `json:"js_path,omitempty"`
}

// Validate checks the request before any file system change.
func (r RemoveRequest) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		v.Add("name is required")
	}
	validateCommon(v, r.Files, r.InstallType, r.JSPath)
	if v.HasErrors() {
		return v
	}
	return nil
}

// RemoveRequest returns the request that removes d.
func (d Descriptor) RemoveRequest() RemoveRequest {
	return RemoveRequest{
		Name:        d.Name,
		Files:       d.Files,
		InstallType: d.InstallType,
		JSPath:      d.JSPath,
	}
}

func validateCommon(v *ValidationError, files []string, t InstallType, jsPath string) {
	if !t.Valid() {
		v.Addf("invalid install type %q", t)
	}
	if len(files) == 0 {
		v.Add("files must contain at least one URL")
	}
	for i, f := range files {
		if strings.TrimSpace(f) == "" {
			v.Addf("files[%d] is empty", i)
		}
	}
	if jsPath != "" && !filepath.IsLocal(jsPath) {
		v.Addf("js_path %q must be a relative path inside the web extensions directory", jsPath)
	}
}

// InstalledRegistry maps plugin names to the descriptor they were installed
// with.
type InstalledRegistry map[string]Descriptor

// Names returns the plugin names in lexical order.
func (r InstalledRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns the descriptors ordered by name.
func (r InstalledRegistry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r))
	for _, name := range r.Names() {
		out = append(out, r[name])
	}
	return out
}

// Clone returns a shallow copy of the registry.
func (r InstalledRegistry) Clone() InstalledRegistry {
	out := make(InstalledRegistry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Entry is a registry record as reported by List, annotated with where the
// host keeps it.
type Entry struct {
	Descriptor
	Path string `json:"path"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.InstallType)
}
