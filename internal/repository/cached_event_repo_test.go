package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEventRepo serves a single event and counts lookups
type countingEventRepo struct {
	domain.EventRepository
	event   domain.Event
	lookups int
	deleted bool
}

func (r *countingEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.lookups++
	if r.deleted || id != r.event.ID {
		return nil, domain.ErrNotFound
	}
	cp := r.event
	return &cp, nil
}

func (r *countingEventRepo) ActivateListing(ctx context.Context, id, invoiceID string, expiresAt time.Time) (bool, error) {
	r.event.ListingStatus = domain.ListingStatusActive
	r.event.ListingExpiresAt = &expiresAt
	return true, nil
}

func (r *countingEventRepo) ExpireListing(ctx context.Context, id string, now time.Time) (bool, error) {
	if r.event.ListingStatus != domain.ListingStatusActive || r.event.ListingExpiresAt.After(now) {
		return false, nil
	}
	r.event.ListingStatus = domain.ListingStatusExpired
	return true, nil
}

func (r *countingEventRepo) Delete(ctx context.Context, id string) error {
	r.deleted = true
	return nil
}

func newCachedEvents(t *testing.T) (*CachedEventRepository, *countingEventRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingEventRepo{event: domain.Event{
		ID:            "01J0EVENT",
		Title:         "Jazz Night",
		Category:      "music",
		Days:          16,
		ListingFee:    decimal.RequireFromString("12.50"),
		ListingStatus: domain.ListingStatusPendingPayment,
		OrganizerID:   "user-1",
	}}
	return NewCachedEventRepository(inner, NewRedisCacheRepository(client)), inner, mr
}

func TestCachedEventRepository_ReadThrough(t *testing.T) {
	repo, inner, _ := newCachedEvents(t)
	ctx := context.Background()

	first, err := repo.GetByID(ctx, "01J0EVENT")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "01J0EVENT")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.lookups)
	assert.Equal(t, first.Title, second.Title)
	assert.True(t, second.ListingFee.Equal(decimal.RequireFromString("12.50")))
}

func TestCachedEventRepository_WritesInvalidate(t *testing.T) {
	repo, inner, _ := newCachedEvents(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "01J0EVENT")
	require.NoError(t, err)

	expires := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	applied, err := repo.ActivateListing(ctx, "01J0EVENT", "inv-1", expires)
	require.NoError(t, err)
	require.True(t, applied)

	event, err := repo.GetByID(ctx, "01J0EVENT")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lookups)
	assert.Equal(t, domain.ListingStatusActive, event.ListingStatus)
	require.NotNil(t, event.ListingExpiresAt)
	assert.True(t, expires.Equal(*event.ListingExpiresAt))

	// Nothing to expire yet, so the cached copy stays.
	changed, err := repo.ExpireListing(ctx, "01J0EVENT", expires.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = repo.GetByID(ctx, "01J0EVENT")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lookups)

	changed, err = repo.ExpireListing(ctx, "01J0EVENT", expires)
	require.NoError(t, err)
	assert.True(t, changed)
	event, err = repo.GetByID(ctx, "01J0EVENT")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.lookups)
	assert.Equal(t, domain.ListingStatusExpired, event.ListingStatus)

	require.NoError(t, repo.Delete(ctx, "01J0EVENT"))
	_, err = repo.GetByID(ctx, "01J0EVENT")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedEventRepository_RedisDown(t *testing.T) {
	repo, inner, mr := newCachedEvents(t)
	mr.Close()

	event, err := repo.GetByID(context.Background(), "01J0EVENT")
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", event.Title)
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedEventRepository_MissesAreNotCached(t *testing.T) {
	repo, inner, _ := newCachedEvents(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, inner.lookups)
}
