package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renewingEventRepo renews a listing between the sweep's read and its write
type renewingEventRepo struct {
	*fakeEventRepo
	renewID    string
	renewUntil time.Time
}

func (r *renewingEventRepo) ListExpiredListings(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	due, err := r.fakeEventRepo.ListExpiredListings(ctx, now)
	r.setListing(r.renewID, domain.ListingStatusActive, &r.renewUntil)
	return due, err
}

func TestListingExpiryService_SkipsListingRenewedMidSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	events := newFakeEventRepo()

	lapsed := now.Add(-time.Hour)
	renewed := &domain.Event{Title: "Gig", Location: "Park", Category: "music", Days: 7,
		ListingStatus: domain.ListingStatusActive, ListingExpiresAt: &lapsed}
	require.NoError(t, events.Create(ctx, renewed))
	other := &domain.Event{Title: "Fair", Location: "Square", Category: "food", Days: 1,
		ListingStatus: domain.ListingStatusActive, ListingExpiresAt: &lapsed}
	require.NoError(t, events.Create(ctx, other))

	repo := &renewingEventRepo{fakeEventRepo: events, renewID: renewed.ID, renewUntil: now.AddDate(0, 0, 7)}
	svc := NewListingExpiryService(repo)
	svc.now = func() time.Time { return now }

	n, err := svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := events.GetByID(ctx, renewed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusActive, got.ListingStatus)
	assert.True(t, got.IsListed(now))

	got, err = events.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusExpired, got.ListingStatus)
}

func TestListingExpiryService_ExpireDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	events := newFakeEventRepo()

	add := func(status string, expires *time.Time) string {
		e := &domain.Event{Title: "Gig", Location: "Park", Category: "music", Days: 1,
			ListingStatus: status, ListingExpiresAt: expires}
		require.NoError(t, events.Create(ctx, e))
		return e.ID
	}
	past := now.Add(-time.Hour)
	exact := now
	future := now.Add(time.Hour)

	endedID := add(domain.ListingStatusActive, &past)
	endsNowID := add(domain.ListingStatusActive, &exact)
	runningID := add(domain.ListingStatusActive, &future)
	pendingID := add(domain.ListingStatusPendingPayment, nil)

	svc := NewListingExpiryService(events)
	svc.now = func() time.Time { return now }

	n, err := svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	statusOf := func(id string) string {
		e, err := events.GetByID(ctx, id)
		require.NoError(t, err)
		return e.ListingStatus
	}
	assert.Equal(t, domain.ListingStatusExpired, statusOf(endedID))
	assert.Equal(t, domain.ListingStatusExpired, statusOf(endsNowID))
	assert.Equal(t, domain.ListingStatusActive, statusOf(runningID))
	assert.Equal(t, domain.ListingStatusPendingPayment, statusOf(pendingID))

	// A second sweep finds nothing left to do.
	n, err = svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
