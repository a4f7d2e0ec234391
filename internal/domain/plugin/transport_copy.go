package plugin

import (
	"context"
	"path/filepath"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// DefaultScriptExtensions lists the suffixes of files the host loads as
// plugin modules from the plugins root.
var DefaultScriptExtensions = []string{".py"}

// CopyTransport downloads single files. Script files go to the plugins
// root and everything else to the web extensions directory.
type CopyTransport struct {
	fetcher    ports.Fetcher
	fs         ports.FileSystem
	logger     ports.Logger
	root       string
	webDir     string
	scriptExts []string
}

// NewCopyTransport creates a copy transport.
func NewCopyTransport(root, webDir string, scriptExts []string, fetcher ports.Fetcher, fsys ports.FileSystem, logger ports.Logger) *CopyTransport {
	if len(scriptExts) == 0 {
		scriptExts = DefaultScriptExtensions
	}
	if logger == nil {
		logger = discardLogger{}
	}
	return &CopyTransport{
		fetcher:    fetcher,
		fs:         fsys,
		logger:     logger,
		root:       root,
		webDir:     webDir,
		scriptExts: scriptExts,
	}
}

// Install fetches every file of d. The first failure stops the batch and
// nothing fetched earlier is removed.
func (c *CopyTransport) Install(ctx context.Context, d Descriptor) ([]string, error) {
	paths := make([]string, 0, len(d.Files))
	for _, raw := range d.Files {
		u := NormalizeURL(raw)

		target := c.root
		if !isScriptFile(u, c.scriptExts) {
			target = c.webDir
			if d.JSPath != "" {
				target = filepath.Join(c.webDir, d.JSPath)
			}
		}
		if err := c.fs.MkdirAll(target, 0o755); err != nil {
			logFrom(ctx, c.logger).Error(ctx, "install(copy) failed", ports.F("url", u), ports.Err(err))
			return paths, &TransportError{Method: InstallCopy, URL: u, Err: err}
		}

		logFrom(ctx, c.logger).Info(ctx, "downloading file", ports.F("url", u), ports.F("dir", target))
		path, err := c.fetcher.FetchInto(ctx, u, target)
		if err != nil {
			logFrom(ctx, c.logger).Error(ctx, "install(copy) failed", ports.F("url", u), ports.Err(err))
			return paths, &TransportError{Method: InstallCopy, URL: u, Err: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Uninstall removes each file or its disabled sibling. Files that are
// already gone are skipped, so repeated calls succeed.
func (c *CopyTransport) Uninstall(ctx context.Context, req RemoveRequest) error {
	jsPath := req.JSPath
	if jsPath == "" {
		jsPath = "."
	}

	for _, raw := range req.Files {
		u := NormalizeURL(raw)
		base := filepath.Join(c.webDir, jsPath)
		if isScriptFile(u, c.scriptExts) {
			base = c.root
		}
		path := filepath.Join(base, FileName(u))

		var err error
		switch c.fs.Probe(path) {
		case ports.PathPresent:
			err = c.fs.Remove(path)
		case ports.PathDisabled:
			err = c.fs.Remove(path + ports.DisabledSuffix)
		case ports.PathAbsent:
			logFrom(ctx, c.logger).Debug(ctx, "file already absent", ports.F("path", path))
		}
		if err != nil {
			logFrom(ctx, c.logger).Error(ctx, "uninstall(copy) failed", ports.F("url", u), ports.Err(err))
			return err
		}
	}
	return nil
}

// Ensure CopyTransport implements Transport.
var _ Transport = (*CopyTransport)(nil)
