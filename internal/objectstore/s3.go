package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"esmcat/internal/config"
)

const defaultS3Region = "us-east-1"

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store probes and fetches s3:// objects with the AWS SDK v2.
type S3Store struct {
	client s3API
}

// NewS3Store creates an S3Store. Without static credentials requests are
// sent unsigned, which works for public buckets. A custom endpoint switches
// to path-style addressing for S3-compatible services.
func NewS3Store(cfg *config.Config) *S3Store {
	opts := s3.Options{
		Region:      defaultS3Region,
		Credentials: aws.AnonymousCredentials{},
	}
	if cfg.S3Region != nil {
		opts.Region = *cfg.S3Region
	}
	if cfg.HasS3Config() {
		opts.Credentials = credentials.NewStaticCredentialsProvider(*cfg.S3KeyID, *cfg.S3Secret, "")
	}
	if cfg.S3Endpoint != nil {
		endpoint := *cfg.S3Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	if cfg.HTTP.Timeout > 0 {
		opts.HTTPClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}
	return &S3Store{client: s3.New(opts)}
}

// Probe issues HeadObject for the object.
func (s *S3Store) Probe(ctx context.Context, u *url.URL) error {
	bucket, key, err := s3Location(u)
	if err != nil {
		return err
	}
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("head %q: %w", u.Redacted(), err)
	}
	return nil
}

// Open issues GetObject and returns the object body.
func (s *S3Store) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	bucket, key, err := s3Location(u)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", u.Redacted(), err)
	}
	return out.Body, nil
}
