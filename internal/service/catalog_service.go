package service

import (
	"context"
	"fmt"
	"log"

	"github.com/mansoorceksport/eventhub/internal/domain"
)

// CatalogService manages listing packages. Every change bumps the catalog
// version so cached price quotes are recomputed.
type CatalogService struct {
	packageRepo domain.ListingPackageRepository
	cache       domain.PriceQuoteCache
}

func NewCatalogService(packageRepo domain.ListingPackageRepository, cache domain.PriceQuoteCache) *CatalogService {
	return &CatalogService{
		packageRepo: packageRepo,
		cache:       cache,
	}
}

func (s *CatalogService) Create(ctx context.Context, pkg *domain.ListingPackage) error {
	pkg.IsActive = true
	if err := pkg.Validate(); err != nil {
		return err
	}
	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return err
	}
	s.invalidateQuotes(ctx)
	return nil
}

func (s *CatalogService) Update(ctx context.Context, id string, update domain.ListingPackageUpdate) (*domain.ListingPackage, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(pkg)
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		return nil, err
	}
	s.invalidateQuotes(ctx)
	return pkg, nil
}

// Delete deactivates the package; it stays readable by ID for past invoices.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.packageRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidateQuotes(ctx)
	return nil
}

// SeedDefaults inserts the default catalog when no package exists yet and
// reports how many were created.
func (s *CatalogService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.packageRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[Seed] Listing catalog already has %d packages, skipping", n)
		return 0, nil
	}

	created := 0
	for _, pkg := range domain.DefaultListingPackages() {
		if err := s.packageRepo.Create(ctx, pkg); err != nil {
			return created, fmt.Errorf("failed to seed listing package %q: %w", pkg.Name, err)
		}
		log.Printf("[Seed] Created listing package: %s (%d days) - Price: %s", pkg.Name, pkg.DurationDays, pkg.Price.StringFixed(2))
		created++
	}
	s.invalidateQuotes(ctx)
	return created, nil
}

func (s *CatalogService) invalidateQuotes(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.BumpCatalogVersion(ctx); err != nil {
		// Quotes expire on their own TTL
		log.Printf("[Pricing] Failed to bump catalog version: %v", err)
	}
}
