package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"esmcat/internal/config"
)

// gcsAPI is the subset of GCS operations the store uses.
type gcsAPI interface {
	Attrs(ctx context.Context, bucket, key string) error
	NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

type gcsClient struct {
	client *storage.Client
}

func (c *gcsClient) Attrs(ctx context.Context, bucket, key string) error {
	_, err := c.client.Bucket(bucket).Object(key).Attrs(ctx)
	return err
}

func (c *gcsClient) NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return c.client.Bucket(bucket).Object(key).NewReader(ctx)
}

// GCSStore probes and fetches gs:// objects.
type GCSStore struct {
	api gcsAPI
}

// NewGCSStore creates a GCSStore. With GCS_KEY_FILE set the service account
// key is used; otherwise requests are unauthenticated.
func NewGCSStore(ctx context.Context, cfg *config.Config) (*GCSStore, error) {
	opt := option.WithoutAuthentication()
	if cfg.GCSKeyFile != nil {
		opt = option.WithAuthCredentialsFile(option.ServiceAccount, *cfg.GCSKeyFile)
	}
	client, err := storage.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSStore{api: &gcsClient{client: client}}, nil
}

// Probe fetches the object attributes.
func (s *GCSStore) Probe(ctx context.Context, u *url.URL) error {
	bucket, key, err := gcsLocation(u)
	if err != nil {
		return err
	}
	if err := s.api.Attrs(ctx, bucket, key); err != nil {
		return fmt.Errorf("attrs %q: %w", u.Redacted(), err)
	}
	return nil
}

// Open returns a reader over the object contents.
func (s *GCSStore) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	bucket, key, err := gcsLocation(u)
	if err != nil {
		return nil, err
	}
	r, err := s.api.NewReader(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", u.Redacted(), err)
	}
	return r, nil
}
