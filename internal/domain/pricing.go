package domain

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PriceBreakdownLine is one package applied by the optimizer.
type PriceBreakdownLine struct {
	PackageName  string          `json:"package_name"`
	DurationDays int             `json:"duration_days"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// PriceResult is the priced cover for a requested listing duration.
type PriceResult struct {
	RequestedDays int                  `json:"requested_days"`
	CoveredDays   int                  `json:"covered_days"`
	TotalPrice    decimal.Decimal      `json:"total_price"`
	Breakdown     []PriceBreakdownLine `json:"breakdown"`
}

// FullyCovered reports whether the breakdown covers every requested day.
// The greedy pass can fall short when the catalog has no 1-day package.
func (r *PriceResult) FullyCovered() bool {
	return r.CoveredDays >= r.RequestedDays
}

// CalculateListingPrice prices targetDays against the catalog.
//
// Packages are applied longest first; each takes as many whole units as fit
// in the remaining days. Equal durations keep their catalog order. The pass is
// greedy by duration, not a minimum-cost search, and may leave days uncovered
// when no package fits the remainder. Inactive packages and packages with a
// non-positive duration are ignored. The catalog slice is not modified.
func CalculateListingPrice(targetDays int, catalog []*ListingPackage) (*PriceResult, error) {
	if targetDays < 1 {
		return nil, ErrInvalidDays
	}

	sorted := make([]*ListingPackage, 0, len(catalog))
	for _, pkg := range catalog {
		if pkg == nil || !pkg.IsActive || pkg.DurationDays < 1 {
			continue
		}
		sorted = append(sorted, pkg)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DurationDays > sorted[j].DurationDays
	})

	result := &PriceResult{
		RequestedDays: targetDays,
		TotalPrice:    decimal.Zero,
		Breakdown:     []PriceBreakdownLine{},
	}

	remaining := targetDays
	for _, pkg := range sorted {
		if remaining <= 0 {
			break
		}
		quantity := remaining / pkg.DurationDays
		if quantity == 0 {
			continue
		}
		subtotal := pkg.Price.Mul(decimal.NewFromInt(int64(quantity)))
		result.Breakdown = append(result.Breakdown, PriceBreakdownLine{
			PackageName:  pkg.Name,
			DurationDays: pkg.DurationDays,
			Quantity:     quantity,
			UnitPrice:    pkg.Price,
			Subtotal:     subtotal,
		})
		result.TotalPrice = result.TotalPrice.Add(subtotal)
		remaining -= quantity * pkg.DurationDays
	}
	result.CoveredDays = targetDays - remaining

	return result, nil
}

// PriceQuoteCache stores computed quotes keyed by catalog version and day count.
// Bumping the version on every catalog change makes older entries unreachable.
type PriceQuoteCache interface {
	CatalogVersion(ctx context.Context) (int64, error)
	BumpCatalogVersion(ctx context.Context) (int64, error)
	// GetPriceQuote returns ErrCacheMiss when nothing is stored.
	GetPriceQuote(ctx context.Context, version int64, days int) (*PriceResult, error)
	SetPriceQuote(ctx context.Context, version int64, days int, result *PriceResult, ttl time.Duration) error
}
