package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"esmcat/internal/domain"
	"esmcat/internal/locator"
)

// ResolveCatalog finds and loads the table described by d, which was read
// from ref. It returns the table and the location it was loaded from; the
// location is empty when the table is embedded in catalog_dict.
//
// catalog_file wins over catalog_dict. Under a remote ref, an absolute URL in
// catalog_file is used directly, otherwise the file is looked up next to the
// descriptor. Under a local ref, catalog_file is tried as given and then
// relative to the descriptor's directory.
func (s *Service) ResolveCatalog(ctx context.Context, d *domain.Descriptor, ref string) (*domain.Table, string, error) {
	log := s.logger.With("op", uuid.NewString(), "reference", ref)

	raw, ok := d.CatalogFile()
	if !ok {
		log.DebugContext(ctx, "using embedded catalog")
		records, err := d.CatalogRecords()
		if err != nil {
			return nil, "", err
		}
		table, err := domain.TableFromRecords(records)
		if err != nil {
			return nil, "", err
		}
		return table, "", nil
	}

	name, ok := raw.(string)
	if !ok {
		return nil, "", domain.ErrValidation("%s must be a string, got %T", domain.KeyCatalogFile, raw)
	}

	if base, ok := s.checker.Remote(ctx, ref); ok {
		return s.resolveRemote(ctx, log, base, name)
	}
	return s.resolveLocal(ctx, log, ref, name)
}

func (s *Service) resolveRemote(ctx context.Context, log *slog.Logger, base *url.URL, name string) (*domain.Table, string, error) {
	if u, ok := s.checker.Remote(ctx, name); ok {
		log.DebugContext(ctx, "catalog file is a remote url", "location", u.Redacted())
		table, err := s.fetchTable(ctx, u)
		if err != nil {
			return nil, "", err
		}
		return table, name, nil
	}

	joined := locator.JoinRelative(base, name)
	u, ok := s.checker.Remote(ctx, joined)
	if !ok {
		log.DebugContext(ctx, "catalog file not reachable", "location", joined)
		return nil, "", domain.ErrNotFound(joined)
	}
	log.DebugContext(ctx, "catalog file is next to descriptor", "location", u.Redacted())
	table, err := s.fetchTable(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return table, joined, nil
}

func (s *Service) resolveLocal(ctx context.Context, log *slog.Logger, ref, name string) (*domain.Table, string, error) {
	if exists(name) {
		log.DebugContext(ctx, "catalog file found as given", "location", name)
		table, err := s.loader.LoadFile(ctx, name)
		if err != nil {
			return nil, "", err
		}
		return table, name, nil
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, "", err
	}
	candidate := name
	if !filepath.IsAbs(name) {
		candidate = filepath.Join(filepath.Dir(abs), name)
	}
	if !exists(candidate) {
		log.DebugContext(ctx, "catalog file not found", "location", candidate)
		return nil, "", domain.ErrNotFound(candidate)
	}

	log.DebugContext(ctx, "catalog file is next to descriptor", "location", candidate)
	table, err := s.loader.LoadFile(ctx, candidate)
	if err != nil {
		return nil, "", err
	}
	return table, candidate, nil
}

func (s *Service) fetchTable(ctx context.Context, u *url.URL) (*domain.Table, error) {
	body, err := s.fetcher.Open(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	return s.loader.Load(ctx, body, u.String())
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
