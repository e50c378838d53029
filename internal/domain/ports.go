package domain

import (
	"context"
	"io"
	"net/url"
)

// Prober reports whether a remote resource is currently reachable.
// A nil error means the resource answered with a success status.
type Prober interface {
	Probe(ctx context.Context, u *url.URL) error
}

// Fetcher opens a remote resource for reading. Callers must close the reader.
type Fetcher interface {
	Open(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// ObjectStore is a remote backend that can both probe and fetch.
type ObjectStore interface {
	Prober
	Fetcher
}

// TableLoader turns CSV content into a Table. name is the source location;
// its extension selects decompression (".csv.gz" and the like).
type TableLoader interface {
	LoadFile(ctx context.Context, path string) (*Table, error)
	Load(ctx context.Context, r io.Reader, name string) (*Table, error)
}
