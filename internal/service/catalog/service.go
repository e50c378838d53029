// Package catalog loads catalog descriptors and resolves the tabular catalog
// they point to.
package catalog

import (
	"context"
	"log/slog"

	"esmcat/internal/domain"
	"esmcat/internal/locator"
)

// Service loads descriptors and resolves their catalog tables. It keeps no
// state between calls.
type Service struct {
	checker *locator.Checker
	fetcher domain.Fetcher
	loader  domain.TableLoader
	logger  *slog.Logger
}

// Deps holds dependencies for Service.
type Deps struct {
	// Store probes and fetches remote references (usually an objectstore.Router).
	Store  domain.ObjectStore
	Loader domain.TableLoader
	Logger *slog.Logger
}

// NewService creates a new Service.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		checker: locator.NewChecker(deps.Store, logger),
		fetcher: deps.Store,
		loader:  deps.Loader,
		logger:  logger,
	}
}

// Catalog is a loaded descriptor together with its resolved table.
type Catalog struct {
	Descriptor *domain.Descriptor
	// Reference is where the descriptor was read from.
	Reference string
	Table     *domain.Table
	// Location is where the table was read from; empty when embedded.
	Location string
}

// Embedded reports whether the table came from catalog_dict.
func (c *Catalog) Embedded() bool { return c.Location == "" }

// Open loads the descriptor at ref and resolves its catalog.
func (s *Service) Open(ctx context.Context, ref string) (*Catalog, error) {
	d, normalized, err := s.LoadDescriptor(ctx, ref)
	if err != nil {
		return nil, err
	}
	table, location, err := s.ResolveCatalog(ctx, d, normalized)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Descriptor: d,
		Reference:  normalized,
		Table:      table,
		Location:   location,
	}, nil
}

// Usable reports whether candidate is a reachable remote URL.
func (s *Service) Usable(ctx context.Context, candidate any) bool {
	return s.checker.Usable(ctx, candidate)
}
