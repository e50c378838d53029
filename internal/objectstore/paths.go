package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func ParseS3Path(s3Path string) (bucket, key string, err error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	return s3Location(u)
}

func s3Location(u *url.URL) (bucket, key string, err error) {
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, u.Redacted())
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in S3 path %q", u.Redacted())
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in S3 path %q", u.Redacted())
	}
	return bucket, key, nil
}

// ParseGCSPath extracts bucket and key from a "gs://bucket/path/to/file" URI.
// The "gcs" scheme is accepted as an alias.
func ParseGCSPath(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse GCS path %q: %w", path, err)
	}
	return gcsLocation(u)
}

func gcsLocation(u *url.URL) (bucket, key string, err error) {
	if u.Scheme != "gs" && u.Scheme != "gcs" {
		return "", "", fmt.Errorf("expected gs:// scheme, got %q in %q", u.Scheme, u.Redacted())
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in GCS path %q", u.Redacted())
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in GCS path %q", u.Redacted())
	}
	return bucket, key, nil
}

// AzureLocation identifies a blob. Account is empty for az:// URIs, which
// rely on the configured account.
type AzureLocation struct {
	Account   string
	Container string
	Key       string
}

// ParseAzurePath extracts account, container and key from an Azure storage URI.
//
// Supported formats:
//
//	abfss://container@account.dfs.core.windows.net/path/to/file
//	az://container/path/to/file
func ParseAzurePath(path string) (AzureLocation, error) {
	u, err := url.Parse(path)
	if err != nil {
		return AzureLocation{}, fmt.Errorf("parse Azure path %q: %w", path, err)
	}
	return azureLocation(u)
}

func azureLocation(u *url.URL) (AzureLocation, error) {
	var loc AzureLocation
	switch u.Scheme {
	case "abfss":
		// Go's url.Parse treats "container" as userinfo (before @) and
		// "account.dfs.core.windows.net" as host.
		if u.User == nil {
			return loc, fmt.Errorf("abfss path %q missing container@account component", u.Redacted())
		}
		loc.Container = u.User.Username()
		loc.Account, _, _ = strings.Cut(u.Hostname(), ".")
		loc.Key = strings.TrimPrefix(u.Path, "/")

	case "az":
		loc.Container = u.Host
		loc.Key = strings.TrimPrefix(u.Path, "/")

	default:
		return loc, fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, u.Redacted())
	}

	if loc.Container == "" {
		return loc, fmt.Errorf("empty container in Azure path %q", u.Redacted())
	}
	if loc.Key == "" {
		return loc, fmt.Errorf("empty key in Azure path %q", u.Redacted())
	}
	return loc, nil
}
