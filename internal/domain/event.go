package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Listing status values
const (
	ListingStatusPendingPayment = "pending_payment"
	ListingStatusActive         = "active"
	ListingStatusExpired        = "expired"
)

// CategoryAll disables category filtering when listing events.
const CategoryAll = "all"

// MaxListingDays caps the duration of a single listing or quote at ten years.
const MaxListingDays = 3650

// Event is a local happening published by an organizer.
type Event struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Date             time.Time       `json:"date"`
	Location         string          `json:"location"`
	Category         string          `json:"category"`
	Days             int             `json:"days"` // requested listing duration
	ListingFee       decimal.Decimal `json:"listing_fee"`
	ListingStatus    string          `json:"listing_status"`
	ListingExpiresAt *time.Time      `json:"listing_expires_at,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	OrganizerID      string          `json:"organizer_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsListed reports whether the listing is live at now.
func (e *Event) IsListed(now time.Time) bool {
	return e.ListingStatus == ListingStatusActive &&
		e.ListingExpiresAt != nil && e.ListingExpiresAt.After(now)
}

// Validate checks the fields required to publish an event.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(e.Title) > 255 {
		return fmt.Errorf("%w: title must be at most 255 characters", ErrInvalidInput)
	}
	if strings.TrimSpace(e.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if len(e.Category) > 50 {
		return fmt.Errorf("%w: category must be at most 50 characters", ErrInvalidInput)
	}
	if e.Days < 1 || e.Days > MaxListingDays {
		return ErrInvalidDays
	}
	return nil
}

// EventDetails is an event enriched with attendance and viewer state.
type EventDetails struct {
	*Event
	AttendeeCount int64  `json:"attendee_count"`
	RSVPStatus    string `json:"rsvp_status,omitempty"`
	IsSaved       bool   `json:"is_saved"`
}

// CalculateListingEndDate returns when a listing paid for days ends.
// A listing that is still running at now is extended from its current end;
// otherwise the new period starts at now.
func CalculateListingEndDate(currentEnd *time.Time, days int, now time.Time) time.Time {
	now = now.UTC()
	if currentEnd != nil && currentEnd.After(now) {
		return currentEnd.UTC().AddDate(0, 0, days)
	}
	return now.AddDate(0, 0, days)
}

// EventRepository defines operations for managing events
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Event, error)
	// ListListed returns the events live at now, latest event date first,
	// optionally filtered by category.
	ListListed(ctx context.Context, category string, now time.Time) ([]*Event, error)
	GetByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	UpdateImageURL(ctx context.Context, id, imageURL string) error
	// ActivateListing sets the listing active until expiresAt on behalf of
	// invoiceID. It reports false, changing nothing, when that invoice was
	// already applied.
	ActivateListing(ctx context.Context, id, invoiceID string, expiresAt time.Time) (bool, error)
	// ListExpiredListings returns active listings whose paid period ended at or before now.
	ListExpiredListings(ctx context.Context, now time.Time) ([]*Event, error)
	// ExpireListing moves the listing to expired only while it is still active
	// and ended at or before now. It reports whether it changed anything.
	ExpireListing(ctx context.Context, id string, now time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

// EventUpdate carries the descriptive fields an organizer may change. Nil means unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Category    *string
}

// Apply copies the set fields onto e.
func (u EventUpdate) Apply(e *Event) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
}
