package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_SeedDefaults(t *testing.T) {
	repo := newFakePackageRepo()
	cache, _ := newRedisQuoteCache(t)
	svc := NewCatalogService(repo, cache)
	ctx := context.Background()

	created, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	created, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	version, err := cache.CatalogVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestCatalogService_MutationsBumpVersion(t *testing.T) {
	repo := newFakePackageRepo()
	cache, _ := newRedisQuoteCache(t)
	svc := NewCatalogService(repo, cache)
	ctx := context.Background()

	pkg := &domain.ListingPackage{Name: "Weekend", DurationDays: 2, Price: decimal.RequireFromString("1.50")}
	require.NoError(t, svc.Create(ctx, pkg))
	assert.True(t, pkg.IsActive)

	name := "Long weekend"
	days := 3
	updated, err := svc.Update(ctx, pkg.ID, domain.ListingPackageUpdate{Name: &name, DurationDays: &days})
	require.NoError(t, err)
	assert.Equal(t, "Long weekend", updated.Name)
	assert.Equal(t, 3, updated.DurationDays)

	require.NoError(t, svc.Delete(ctx, pkg.ID))
	stored, err := repo.GetByID(ctx, pkg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	version, err := cache.CatalogVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)
}

func TestCatalogService_Validation(t *testing.T) {
	repo := newFakePackageRepo()
	svc := NewCatalogService(repo, nil)
	ctx := context.Background()

	err := svc.Create(ctx, &domain.ListingPackage{Name: "Zero", DurationDays: 0, Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = svc.Create(ctx, &domain.ListingPackage{Name: "Negative", DurationDays: 1, Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	pkg := &domain.ListingPackage{Name: "Day", DurationDays: 1, Price: decimal.NewFromInt(1)}
	require.NoError(t, svc.Create(ctx, pkg))
	zero := 0
	_, err = svc.Update(ctx, pkg.ID, domain.ListingPackageUpdate{DurationDays: &zero})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.Update(ctx, "missing", domain.ListingPackageUpdate{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
