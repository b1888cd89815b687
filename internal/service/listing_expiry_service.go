package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
)

// ListingExpiryService moves listings whose paid period ended to expired.
type ListingExpiryService struct {
	eventRepo domain.EventRepository
	now       func() time.Time
}

func NewListingExpiryService(eventRepo domain.EventRepository) *ListingExpiryService {
	return &ListingExpiryService{eventRepo: eventRepo, now: time.Now}
}

// ExpireDue marks every active listing past its end date as expired and
// returns how many were changed. Listings renewed or deleted mid-sweep are
// left alone.
func (s *ListingExpiryService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	due, err := s.eventRepo.ListExpiredListings(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired listings: %w", err)
	}

	expired := 0
	for _, event := range due {
		changed, err := s.eventRepo.ExpireListing(ctx, event.ID, now)
		if err != nil {
			return expired, fmt.Errorf("failed to expire listing %s: %w", event.ID, err)
		}
		if changed {
			expired++
		}
	}

	if expired > 0 {
		log.Printf("[ListingExpiry] Expired %d listing(s)", expired)
	}
	return expired, nil
}
