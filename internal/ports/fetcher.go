package ports

import "context"

// Fetcher downloads remote files.
type Fetcher interface {
	// FetchInto downloads url into dir, naming the file after the URL's
	// basename, and returns the written path.
	FetchInto(ctx context.Context, url, dir string) (string, error)

	// FetchTo downloads url to the exact file path dest.
	FetchTo(ctx context.Context, url, dest string) error
}
