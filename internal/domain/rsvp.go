package domain

import (
	"context"
	"time"
)

// RSVP status values
const (
	RSVPStatusGoing    = "going"
	RSVPStatusMaybe    = "maybe"
	RSVPStatusNotGoing = "not_going"
)

// IsValidRSVPStatus reports whether status is a known RSVP status.
func IsValidRSVPStatus(status string) bool {
	switch status {
	case RSVPStatusGoing, RSVPStatusMaybe, RSVPStatusNotGoing:
		return true
	}
	return false
}

// RSVP is a user's answer to an event. One per (event, user).
type RSVP struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SavedEvent bookmarks an event for a user.
type SavedEvent struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RSVPRepository defines operations for managing RSVPs
type RSVPRepository interface {
	// Upsert creates the RSVP or replaces the status of an existing one.
	Upsert(ctx context.Context, rsvp *RSVP) error
	Delete(ctx context.Context, eventID, userID string) error
	DeleteByEvent(ctx context.Context, eventID string) error
	GetByUser(ctx context.Context, userID string) ([]*RSVP, error)
	// CountGoingByEvents maps event ID to the number of "going" RSVPs.
	CountGoingByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error)
	// GetStatusesByUser maps event ID to the user's RSVP status.
	GetStatusesByUser(ctx context.Context, userID string, eventIDs []string) (map[string]string, error)
}

// SavedEventRepository defines operations for managing saved events
type SavedEventRepository interface {
	// Save is idempotent per (event, user).
	Save(ctx context.Context, saved *SavedEvent) error
	Unsave(ctx context.Context, eventID, userID string) error
	DeleteByEvent(ctx context.Context, eventID string) error
	GetByUser(ctx context.Context, userID string) ([]*SavedEvent, error)
	// GetSavedEventIDs returns the subset of eventIDs the user saved.
	GetSavedEventIDs(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error)
}
