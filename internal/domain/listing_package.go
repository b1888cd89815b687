package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a package price may carry.
const PriceScale = 2

// ListingPackage is a purchasable unit that keeps an event listing live for
// DurationDays days at Price.
type ListingPackage struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DurationDays int             `json:"duration_days"`
	Price        decimal.Decimal `json:"price"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate checks the catalog invariants for a package.
func (p *ListingPackage) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: package name is required", ErrInvalidInput)
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("%w: package name must be at most 100 characters", ErrInvalidInput)
	}
	if p.DurationDays < 1 {
		return fmt.Errorf("%w: duration_days must be at least 1", ErrInvalidInput)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if !p.Price.Equal(p.Price.Round(PriceScale)) {
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrInvalidInput, PriceScale)
	}
	return nil
}

// ListingPackageUpdate carries the fields an admin may change. Nil means unchanged.
type ListingPackageUpdate struct {
	Name         *string
	Description  *string
	DurationDays *int
	Price        *decimal.Decimal
	IsActive     *bool
}

// Apply copies the set fields onto pkg.
func (u ListingPackageUpdate) Apply(pkg *ListingPackage) {
	if u.Name != nil {
		pkg.Name = *u.Name
	}
	if u.Description != nil {
		pkg.Description = *u.Description
	}
	if u.DurationDays != nil {
		pkg.DurationDays = *u.DurationDays
	}
	if u.Price != nil {
		pkg.Price = *u.Price
	}
	if u.IsActive != nil {
		pkg.IsActive = *u.IsActive
	}
}

// ListingPackageRepository defines operations for the listing package catalog
type ListingPackageRepository interface {
	Create(ctx context.Context, pkg *ListingPackage) error
	GetByID(ctx context.Context, id string) (*ListingPackage, error)
	// GetActivePackages returns active packages sorted by duration ascending.
	GetActivePackages(ctx context.Context) ([]*ListingPackage, error)
	Update(ctx context.Context, pkg *ListingPackage) error
	Deactivate(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// DefaultListingPackages is the catalog seeded into an empty database.
func DefaultListingPackages() []*ListingPackage {
	return []*ListingPackage{
		{Name: "1 Day", Description: "Single day listing", DurationDays: 1, Price: decimal.RequireFromString("1.00"), IsActive: true},
		{Name: "1 Week", Description: "Seven day listing", DurationDays: 7, Price: decimal.RequireFromString("7.00"), IsActive: true},
		{Name: "2 Weeks", Description: "Fourteen day listing", DurationDays: 14, Price: decimal.RequireFromString("10.00"), IsActive: true},
		{Name: "1 Month", Description: "Thirty day listing", DurationDays: 30, Price: decimal.RequireFromString("20.00"), IsActive: true},
	}
}
