package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// PricingService quotes listing prices against the active package catalog
type PricingService struct {
	packageRepo domain.ListingPackageRepository
	cache       domain.PriceQuoteCache
	cacheTTL    time.Duration
	quotes      metric.Int64Counter
}

// NewPricingService creates a pricing service. cache may be nil, in which case
// every quote is computed from the catalog.
func NewPricingService(
	packageRepo domain.ListingPackageRepository,
	cache domain.PriceQuoteCache,
	cacheTTL time.Duration,
	meter metric.Meter,
) *PricingService {
	quotes, err := meter.Int64Counter("listing.price_quotes",
		metric.WithDescription("Listing price quotes served"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		log.Printf("[Pricing] Failed to create quote counter: %v", err)
	}

	return &PricingService{
		packageRepo: packageRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		quotes:      quotes,
	}
}

// Catalog returns the active packages, shortest first
func (s *PricingService) Catalog(ctx context.Context) ([]*domain.ListingPackage, error) {
	return s.packageRepo.GetActivePackages(ctx)
}

// Quote prices days against the current catalog.
func (s *PricingService) Quote(ctx context.Context, days int) (*domain.PriceResult, error) {
	if days < 1 {
		return nil, domain.ErrInvalidDays
	}

	ctx, span := otel.Tracer("pricing").Start(ctx, "PricingService.Quote",
		trace.WithAttributes(attribute.Int("pricing.days", days)),
	)
	defer span.End()

	if s.cache == nil {
		return s.compute(ctx, days, "disabled")
	}

	version, err := s.cache.CatalogVersion(ctx)
	if err != nil {
		log.Printf("[Pricing] Catalog version unavailable, computing directly: %v", err)
		return s.compute(ctx, days, "error")
	}

	cached, err := s.cache.GetPriceQuote(ctx, version, days)
	if err == nil {
		span.SetAttributes(attribute.String("cache.result", "hit"))
		s.count(ctx, "hit")
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[Pricing] Quote cache read failed: %v", err)
	}

	span.SetAttributes(attribute.String("cache.result", "miss"))
	result, err := s.compute(ctx, days, "miss")
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPriceQuote(ctx, version, days, result, s.cacheTTL); err != nil {
		log.Printf("[Pricing] Failed to cache quote for %d days: %v", days, err)
	}
	return result, nil
}

func (s *PricingService) compute(ctx context.Context, days int, cacheResult string) (*domain.PriceResult, error) {
	catalog, err := s.packageRepo.GetActivePackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing packages: %w", err)
	}

	result, err := domain.CalculateListingPrice(days, catalog)
	if err != nil {
		return nil, err
	}
	if !result.FullyCovered() {
		log.Printf("[Pricing] Catalog covers only %d of %d requested days", result.CoveredDays, days)
	}

	s.count(ctx, cacheResult)
	return result, nil
}

func (s *PricingService) count(ctx context.Context, cacheResult string) {
	if s.quotes == nil {
		return
	}
	s.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cacheResult)))
}
