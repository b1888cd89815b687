package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// EventService publishes events and tracks who is going
type EventService struct {
	eventRepo domain.EventRepository
	rsvpRepo  domain.RSVPRepository
	savedRepo domain.SavedEventRepository
	fileRepo  domain.FileRepository
	pricing   *PricingService
	settings  *SettingsService
	now       func() time.Time
}

func NewEventService(
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	savedRepo domain.SavedEventRepository,
	fileRepo domain.FileRepository,
	pricing *PricingService,
	settings *SettingsService,
) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		rsvpRepo:  rsvpRepo,
		savedRepo: savedRepo,
		fileRepo:  fileRepo,
		pricing:   pricing,
		settings:  settings,
		now:       time.Now,
	}
}

// CreateEventInput is what an organizer submits. Days 0 means a one day listing.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Category    string
	Days        int
}

// CreateEventResult is the stored event and, in paid mode, the fee breakdown.
type CreateEventResult struct {
	Event *domain.Event
	Quote *domain.PriceResult
}

// Create stores a new event. In paid mode the listing fee comes from the
// price optimizer and the listing waits for payment; in free mode it goes
// live right away.
func (s *EventService) Create(ctx context.Context, organizerID string, in CreateEventInput) (*CreateEventResult, error) {
	if in.Days == 0 {
		in.Days = 1
	}

	event := &domain.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Date:        in.Date,
		Location:    strings.TrimSpace(in.Location),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Days:        in.Days,
		OrganizerID: organizerID,
		ListingFee:  decimal.Zero,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	paid, err := s.settings.IsPaidMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment settings: %w", err)
	}

	var quote *domain.PriceResult
	if paid {
		quote, err = s.pricing.Quote(ctx, event.Days)
		if err != nil {
			return nil, err
		}
		event.ListingFee = quote.TotalPrice
		event.ListingStatus = domain.ListingStatusPendingPayment
	}
	if !paid || quote.TotalPrice.IsZero() {
		expires := domain.CalculateListingEndDate(nil, event.Days, s.now())
		event.ListingStatus = domain.ListingStatusActive
		event.ListingExpiresAt = &expires
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	log.Printf("[Events] Created event %s (%d days, fee %s, status %s)",
		event.ID, event.Days, event.ListingFee.StringFixed(2), event.ListingStatus)

	return &CreateEventResult{Event: event, Quote: quote}, nil
}

// List returns the live listings, latest event date first, enriched for
// viewerID (may be empty). Unpaid and lapsed listings only show in MyEvents.
func (s *EventService) List(ctx context.Context, category, viewerID string) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.ListListed(ctx, strings.ToLower(strings.TrimSpace(category)), s.now())
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, events, viewerID)
}

// Get returns a live listing, or any of the viewer's own events.
func (s *EventService) Get(ctx context.Context, id, viewerID string) (*domain.EventDetails, error) {
	event, err := s.visibleEvent(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	details, err := s.enrich(ctx, []*domain.Event{event}, viewerID)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// MyEvents lists the events organized by userID
func (s *EventService) MyEvents(ctx context.Context, userID string) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.GetByOrganizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, events, userID)
}

func (s *EventService) Update(ctx context.Context, userID, id string, update domain.EventUpdate) (*domain.Event, error) {
	event, err := s.ownedEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	update.Apply(event)
	if event.Category != "" {
		event.Category = strings.ToLower(strings.TrimSpace(event.Category))
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes the event with its RSVPs and bookmarks
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedEvent(ctx, userID, id); err != nil {
		return err
	}
	if err := s.rsvpRepo.DeleteByEvent(ctx, id); err != nil {
		return err
	}
	if err := s.savedRepo.DeleteByEvent(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// UploadImage stores the picture under events/<id>/ and records its URL
func (s *EventService) UploadImage(ctx context.Context, userID, id, filename, contentType string, data []byte) (string, error) {
	if s.fileRepo == nil {
		return "", fmt.Errorf("%w: image storage is not configured", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: file must be an image", domain.ErrInvalidInput)
	}
	if _, err := s.ownedEvent(ctx, userID, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf("events/%s/%s%s", id, ulid.Make().String(), strings.ToLower(path.Ext(filename)))
	url, err := s.fileRepo.Upload(ctx, data, key, contentType)
	if err != nil {
		return "", err
	}
	if err := s.eventRepo.UpdateImageURL(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}

// RSVP records the user's answer, replacing any earlier one. Empty status means going.
func (s *EventService) RSVP(ctx context.Context, userID, eventID, status string) (*domain.RSVP, error) {
	if status == "" {
		status = domain.RSVPStatusGoing
	}
	if !domain.IsValidRSVPStatus(status) {
		return nil, fmt.Errorf("%w: status must be going, maybe or not_going", domain.ErrInvalidInput)
	}
	if _, err := s.visibleEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}

	rsvp := &domain.RSVP{EventID: eventID, UserID: userID, Status: status}
	if err := s.rsvpRepo.Upsert(ctx, rsvp); err != nil {
		return nil, err
	}
	return rsvp, nil
}

func (s *EventService) CancelRSVP(ctx context.Context, userID, eventID string) error {
	return s.rsvpRepo.Delete(ctx, eventID, userID)
}

// MyRSVPs lists the events the user answered, most recent answer first
func (s *EventService) MyRSVPs(ctx context.Context, userID string) ([]*domain.EventDetails, error) {
	rsvps, err := s.rsvpRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rsvps))
	for _, r := range rsvps {
		ids = append(ids, r.EventID)
	}
	return s.eventsInOrder(ctx, ids, userID)
}

func (s *EventService) Save(ctx context.Context, userID, eventID string) error {
	if _, err := s.visibleEvent(ctx, eventID, userID); err != nil {
		return err
	}
	return s.savedRepo.Save(ctx, &domain.SavedEvent{EventID: eventID, UserID: userID})
}

func (s *EventService) Unsave(ctx context.Context, userID, eventID string) error {
	return s.savedRepo.Unsave(ctx, eventID, userID)
}

// SavedEvents lists bookmarked events, most recently saved first
func (s *EventService) SavedEvents(ctx context.Context, userID string) ([]*domain.EventDetails, error) {
	saved, err := s.savedRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(saved))
	for _, sv := range saved {
		ids = append(ids, sv.EventID)
	}
	return s.eventsInOrder(ctx, ids, userID)
}

// visibleEvent hides events that are not listed from everyone but their organizer.
func (s *EventService) visibleEvent(ctx context.Context, id, viewerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsListed(s.now()) && (viewerID == "" || event.OrganizerID != viewerID) {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *EventService) ownedEvent(ctx context.Context, userID, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != userID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

// eventsInOrder loads ids and returns them in the given order, skipping deleted events
func (s *EventService) eventsInOrder(ctx context.Context, ids []string, viewerID string) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	ordered := make([]*domain.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return s.enrich(ctx, ordered, viewerID)
}

// enrich attaches attendee counts and the viewer's RSVP and saved state.
// The three lookups run concurrently.
func (s *EventService) enrich(ctx context.Context, events []*domain.Event, viewerID string) ([]*domain.EventDetails, error) {
	details := make([]*domain.EventDetails, 0, len(events))
	if len(events) == 0 {
		return details, nil
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	var (
		counts   map[string]int64
		statuses map[string]string
		saved    map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.rsvpRepo.CountGoingByEvents(gctx, ids)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			statuses, err = s.rsvpRepo.GetStatusesByUser(gctx, viewerID, ids)
			return err
		})
		g.Go(func() error {
			var err error
			saved, err = s.savedRepo.GetSavedEventIDs(gctx, viewerID, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load event details: %w", err)
	}

	for _, e := range events {
		details = append(details, &domain.EventDetails{
			Event:         e,
			AttendeeCount: counts[e.ID],
			RSVPStatus:    statuses[e.ID],
			IsSaved:       saved[e.ID],
		})
	}
	return details, nil
}
