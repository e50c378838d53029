// Package objectstore probes and fetches remote descriptors and catalogs.
// Backends are selected by URL scheme: http(s), s3, gs and az/abfss.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"esmcat/internal/config"
	"esmcat/internal/domain"
)

// Compile-time checks.
var _ domain.ObjectStore = (*Router)(nil)
var _ domain.ObjectStore = (*HTTPStore)(nil)
var _ domain.ObjectStore = (*S3Store)(nil)
var _ domain.ObjectStore = (*GCSStore)(nil)
var _ domain.ObjectStore = (*AzureStore)(nil)

// UnsupportedSchemeError is returned for URLs no backend is registered for.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("no object store registered for scheme %q", e.Scheme)
}

// Router dispatches probes and fetches to the backend registered for a URL scheme.
type Router struct {
	stores map[string]domain.ObjectStore
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{stores: map[string]domain.ObjectStore{}}
}

// Register binds store to each scheme, replacing any earlier binding.
func (r *Router) Register(store domain.ObjectStore, schemes ...string) {
	for _, s := range schemes {
		r.stores[strings.ToLower(s)] = store
	}
}

// Schemes returns the registered schemes, sorted.
func (r *Router) Schemes() []string {
	out := make([]string, 0, len(r.stores))
	for s := range r.stores {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (r *Router) lookup(u *url.URL) (domain.ObjectStore, error) {
	store, ok := r.stores[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, &UnsupportedSchemeError{Scheme: u.Scheme}
	}
	return store, nil
}

// Probe implements domain.Prober.
func (r *Router) Probe(ctx context.Context, u *url.URL) error {
	store, err := r.lookup(u)
	if err != nil {
		return err
	}
	return store.Probe(ctx, u)
}

// Open implements domain.Fetcher.
func (r *Router) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	store, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, u)
}

// NewFromConfig builds a Router with every backend the configuration allows.
// Cloud backends without credentials use anonymous access, which is enough
// for public buckets and containers.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := NewRouter()

	r.Register(NewHTTPStore(HTTPOptions{
		Timeout:     cfg.HTTP.Timeout,
		ProbeMethod: cfg.HTTP.ProbeMethod,
		RateLimit:   cfg.HTTP.RateLimit,
		RateBurst:   cfg.HTTP.RateBurst,
		UserAgent:   cfg.HTTP.UserAgent,
	}), "http", "https")

	r.Register(NewS3Store(cfg), "s3")

	gcs, err := NewGCSStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.Register(gcs, "gs", "gcs")

	r.Register(NewAzureStore(cfg), "az", "abfss")

	logger.Debug("object stores ready",
		"schemes", r.Schemes(),
		"s3_credentials", cfg.HasS3Config(),
		"gcs_credentials", cfg.GCSKeyFile != nil,
		"azure_credentials", cfg.HasAzureKey())
	return r, nil
}
