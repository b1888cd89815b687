package handler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/middleware"
	"github.com/mansoorceksport/eventhub/internal/service"
)

// EventHandler handles events, RSVPs and saved events
type EventHandler struct {
	events      *service.EventService
	maxUploadMB int64
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events *service.EventService, maxUploadMB int64) *EventHandler {
	return &EventHandler{
		events:      events,
		maxUploadMB: maxUploadMB,
	}
}

// eventDateLayouts are tried in order when parsing an event date
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date must be RFC 3339 or YYYY-MM-DD", domain.ErrInvalidInput)
}

// CreateEventRequest is the payload for POST /api/events
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Days        int    `json:"days"`
}

// UpdateEventRequest carries optional fields; omitted ones stay unchanged
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	Category    *string `json:"category"`
}

// ListEvents handles GET /api/events?category=
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.events.List(c.UserContext(), c.Query("category"), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err, "ListEvents", "Failed to fetch events")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    events,
	})
}

// GetEvent handles GET /api/events/:id
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.events.Get(c.UserContext(), c.Params("id"), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err, "GetEvent", "Failed to fetch event")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    event,
	})
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		return fail(c, err, "CreateEvent", "")
	}

	result, err := h.events.Create(c.UserContext(), userID, service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		Category:    req.Category,
		Days:        req.Days,
	})
	if err != nil {
		return fail(c, err, "CreateEvent", "Failed to create event")
	}

	resp := fiber.Map{
		"success": true,
		"data":    result.Event,
	}
	if result.Quote != nil {
		resp["pricing"] = result.Quote
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateEvent handles PUT /api/events/:id
func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	update := domain.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return fail(c, err, "UpdateEvent", "")
		}
		update.Date = &date
	}

	event, err := h.events.Update(c.UserContext(), userID, c.Params("id"), update)
	if err != nil {
		return fail(c, err, "UpdateEvent", "Failed to update event")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    event,
	})
}

// DeleteEvent handles DELETE /api/events/:id
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	if err := h.events.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return fail(c, err, "DeleteEvent", "Failed to delete event")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "event deleted",
	})
}

// MyEvents handles GET /api/my-events
func (h *EventHandler) MyEvents(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	events, err := h.events.MyEvents(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "MyEvents", "Failed to fetch events")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    events,
	})
}

// UploadImage handles POST /api/events/:id/image (multipart field "image")
func (h *EventHandler) UploadImage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	imageFile, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "missing 'image' field in form data")
	}

	maxBytes := h.maxUploadMB * 1024 * 1024
	if maxBytes > 0 && imageFile.Size > maxBytes {
		return badRequest(c, fmt.Sprintf("file size exceeds maximum of %dMB", h.maxUploadMB))
	}

	fileHandle, err := imageFile.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to open uploaded file",
		})
	}
	defer fileHandle.Close()

	imageData, err := io.ReadAll(fileHandle)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read uploaded file",
		})
	}

	url, err := h.events.UploadImage(c.UserContext(), userID, c.Params("id"),
		imageFile.Filename, imageFile.Header.Get(fiber.HeaderContentType), imageData)
	if err != nil {
		return fail(c, err, "UploadImage", "Failed to upload image")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"image_url": url},
	})
}

// RSVPRequest is the payload for POST /api/events/:id/rsvp
type RSVPRequest struct {
	Status string `json:"status"`
}

// RSVP handles POST /api/events/:id/rsvp
func (h *EventHandler) RSVP(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	var req RSVPRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	rsvp, err := h.events.RSVP(c.UserContext(), userID, c.Params("id"), req.Status)
	if err != nil {
		return fail(c, err, "RSVP", "Failed to save RSVP")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    rsvp,
	})
}

// CancelRSVP handles DELETE /api/events/:id/rsvp
func (h *EventHandler) CancelRSVP(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	if err := h.events.CancelRSVP(c.UserContext(), userID, c.Params("id")); err != nil {
		return fail(c, err, "RSVP", "Failed to cancel RSVP")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "RSVP cancelled",
	})
}

// MyRSVPs handles GET /api/my-rsvps
func (h *EventHandler) MyRSVPs(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	events, err := h.events.MyRSVPs(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "MyRSVPs", "Failed to fetch RSVPs")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    events,
	})
}

// SaveEvent handles POST /api/events/:id/save
func (h *EventHandler) SaveEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	if err := h.events.Save(c.UserContext(), userID, c.Params("id")); err != nil {
		return fail(c, err, "SaveEvent", "Failed to save event")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "event saved",
	})
}

// UnsaveEvent handles DELETE /api/events/:id/save
func (h *EventHandler) UnsaveEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	if err := h.events.Unsave(c.UserContext(), userID, c.Params("id")); err != nil {
		return fail(c, err, "SaveEvent", "Failed to unsave event")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "event removed from saved",
	})
}

// SavedEvents handles GET /api/saved-events
func (h *EventHandler) SavedEvents(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	events, err := h.events.SavedEvents(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "SavedEvents", "Failed to fetch saved events")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    events,
	})
}
