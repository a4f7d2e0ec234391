package mocks

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// Fetcher serves registered URL contents into a ports.FileSystem.
type Fetcher struct {
	mu       sync.Mutex
	fs       ports.FileSystem
	contents map[string][]byte
	errors   map[string]error
	fetched  []string
}

// NewFetcher creates a Fetcher writing into fsys.
func NewFetcher(fsys ports.FileSystem) *Fetcher {
	return &Fetcher{
		fs:       fsys,
		contents: make(map[string][]byte),
		errors:   make(map[string]error),
	}
}

// AddURL registers the body served for url.
func (f *Fetcher) AddURL(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents[url] = []byte(body)
}

// AddError makes fetching url fail with err.
func (f *Fetcher) AddError(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[url] = err
}

// Fetched returns the URLs fetched so far, in order.
func (f *Fetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// FetchInto writes rawURL's body to dir under the basename of the URL path.
func (f *Fetcher) FetchInto(ctx context.Context, rawURL, dir string) (string, error) {
	name := path.Base(rawURL)
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = path.Base(u.Path)
	}
	dest := filepath.Join(dir, name)
	if err := f.FetchTo(ctx, rawURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// FetchTo writes url's body to dest.
func (f *Fetcher) FetchTo(_ context.Context, url, dest string) error {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	err, hasErr := f.errors[url]
	body, ok := f.contents[url]
	f.mu.Unlock()

	if hasErr {
		return err
	}
	if !ok {
		return fmt.Errorf("GET %s: unexpected status 404", url)
	}
	return f.fs.WriteFileAtomic(dest, body, 0o644)
}

// Ensure Fetcher implements ports.Fetcher.
var _ ports.Fetcher = (*Fetcher)(nil)
