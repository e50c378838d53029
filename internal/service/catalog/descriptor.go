package catalog

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"esmcat/internal/domain"
)

// LoadDescriptor reads and parses the descriptor at ref. A reachable URL is
// fetched and returned unchanged; anything else is read as a local file and
// its absolute path is returned. Errors from the filesystem, the fetcher and
// the JSON decoder are returned as is.
func (s *Service) LoadDescriptor(ctx context.Context, ref string) (*domain.Descriptor, string, error) {
	if u, ok := s.checker.Remote(ctx, ref); ok {
		s.logger.DebugContext(ctx, "loading remote descriptor", "url", u.Redacted())
		d, err := s.fetchDescriptor(ctx, u)
		if err != nil {
			return nil, "", err
		}
		return d, ref, nil
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, "", err
	}
	s.logger.DebugContext(ctx, "loading local descriptor", "path", abs)
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", err
	}
	d, err := domain.ParseDescriptor(data)
	if err != nil {
		return nil, "", err
	}
	return d, abs, nil
}

func (s *Service) fetchDescriptor(ctx context.Context, u *url.URL) (*domain.Descriptor, error) {
	body, err := s.fetcher.Open(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return domain.ParseDescriptor(data)
}
