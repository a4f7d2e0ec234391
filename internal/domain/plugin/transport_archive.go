package plugin

import (
	"context"
	"path/filepath"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

const (
	// DefaultTempArchiveName is the file each archive is downloaded to
	// before extraction.
	DefaultTempArchiveName = "manager-temp.zip"

	unzipUninstallMessage = "uninstall is not supported for plugins installed with the unzip method; remove the files manually"
)

// ArchiveTransport downloads zip archives and extracts them into the
// plugins root.
type ArchiveTransport struct {
	fetcher   ports.Fetcher
	extractor ports.Extractor
	fs        ports.FileSystem
	logger    ports.Logger
	root      string
	tempPath  string
}

// NewArchiveTransport creates an archive transport that stages downloads
// at tempDir/tempName.
func NewArchiveTransport(root, tempDir, tempName string, fetcher ports.Fetcher, extractor ports.Extractor, fsys ports.FileSystem, logger ports.Logger) *ArchiveTransport {
	if tempName == "" {
		tempName = DefaultTempArchiveName
	}
	if logger == nil {
		logger = discardLogger{}
	}
	return &ArchiveTransport{
		fetcher:   fetcher,
		extractor: extractor,
		fs:        fsys,
		logger:    logger,
		root:      root,
		tempPath:  filepath.Join(tempDir, tempName),
	}
}

// Install downloads and extracts every archive of d in order. A failure
// stops the batch; content extracted from earlier archives stays.
func (a *ArchiveTransport) Install(ctx context.Context, d Descriptor) ([]string, error) {
	var paths []string
	for _, raw := range d.Files {
		u := NormalizeURL(raw)
		entries, err := a.installOne(ctx, u)
		if err != nil {
			logFrom(ctx, a.logger).Error(ctx, "install(unzip) failed", ports.F("url", u), ports.Err(err))
			return paths, &TransportError{Method: InstallUnzip, URL: u, Err: err}
		}
		for _, e := range entries {
			paths = append(paths, filepath.Join(a.root, e))
		}
	}
	return paths, nil
}

func (a *ArchiveTransport) installOne(ctx context.Context, u string) ([]string, error) {
	if err := a.fs.MkdirAll(filepath.Dir(a.tempPath), 0o755); err != nil {
		return nil, err
	}
	if err := a.fs.MkdirAll(a.root, 0o755); err != nil {
		return nil, err
	}
	defer func() { _ = a.fs.Remove(a.tempPath) }()

	logFrom(ctx, a.logger).Info(ctx, "downloading archive", ports.F("url", u))
	if err := a.fetcher.FetchTo(ctx, u, a.tempPath); err != nil {
		return nil, err
	}
	return a.extractor.ExtractZip(a.tempPath, a.root)
}

// Uninstall always fails: extracted archives are not tracked file by file.
func (a *ArchiveTransport) Uninstall(_ context.Context, _ RemoveRequest) error {
	return &UnsupportedOperationError{Operation: "uninstall", InstallType: InstallUnzip, Message: unzipUninstallMessage}
}

// Ensure ArchiveTransport implements Transport.
var _ Transport = (*ArchiveTransport)(nil)
