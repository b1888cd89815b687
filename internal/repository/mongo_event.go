package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEventRepository implements domain.EventRepository
type MongoEventRepository struct {
	collection *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	coll := db.Collection("events")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "organizer_id", Value: 1}}},
		{Keys: bson.D{{Key: "listing_status", Value: 1}, {Key: "listing_expires_at", Value: 1}}},
	})

	return &MongoEventRepository{collection: coll}
}

func (r *MongoEventRepository) Create(ctx context.Context, event *domain.Event) error {
	now := time.Now().UTC()
	event.ID = ulid.Make().String()
	event.CreatedAt = now
	event.UpdatedAt = now

	fee, err := toDecimal128(event.ListingFee)
	if err != nil {
		return fmt.Errorf("invalid listing fee: %w", err)
	}

	doc := bson.M{
		"_id":            event.ID,
		"title":          event.Title,
		"description":    event.Description,
		"date":           event.Date.UTC(),
		"location":       event.Location,
		"category":       event.Category,
		"days":           event.Days,
		"listing_fee":    fee,
		"listing_status": event.ListingStatus,
		"image_url":      event.ImageURL,
		"organizer_id":   event.OrganizerID,
		"created_at":     event.CreatedAt,
		"updated_at":     event.UpdatedAt,
	}
	if event.ListingExpiresAt != nil {
		doc["listing_expires_at"] = event.ListingExpiresAt.UTC()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *MongoEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return mapBsonToEvent(raw), nil
}

func (r *MongoEventRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return []*domain.Event{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListListed returns live listings, latest event date first. An empty category
// or "all" returns every category.
func (r *MongoEventRepository) ListListed(ctx context.Context, category string, now time.Time) ([]*domain.Event, error) {
	filter := bson.M{
		"listing_status":     domain.ListingStatusActive,
		"listing_expires_at": bson.M{"$gt": now.UTC()},
	}
	if category != "" && category != domain.CategoryAll {
		filter["category"] = category
	}
	return r.find(ctx, filter)
}

func (r *MongoEventRepository) GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	return r.find(ctx, bson.M{"organizer_id": organizerID})
}

// Update writes the descriptive fields. Listing state changes go through
// ActivateListing and ExpireListing.
func (r *MongoEventRepository) Update(ctx context.Context, event *domain.Event) error {
	event.UpdatedAt = time.Now().UTC()

	return r.set(ctx, event.ID, bson.M{
		"title":       event.Title,
		"description": event.Description,
		"date":        event.Date.UTC(),
		"location":    event.Location,
		"category":    event.Category,
		"updated_at":  event.UpdatedAt,
	})
}

func (r *MongoEventRepository) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	return r.set(ctx, id, bson.M{
		"image_url":  imageURL,
		"updated_at": time.Now().UTC(),
	})
}

func (r *MongoEventRepository) ActivateListing(ctx context.Context, id, invoiceID string, expiresAt time.Time) (bool, error) {
	filter := bson.M{"_id": id, "listing_invoice_id": bson.M{"$ne": invoiceID}}
	update := bson.M{"$set": bson.M{
		"listing_status":     domain.ListingStatusActive,
		"listing_expires_at": expiresAt.UTC(),
		"listing_invoice_id": invoiceID,
		"updated_at":         time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to activate listing: %w", err)
	}
	if result.MatchedCount == 1 {
		return true, nil
	}
	return false, r.exists(ctx, id)
}

func (r *MongoEventRepository) ListExpiredListings(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	return r.find(ctx, bson.M{
		"listing_status":     domain.ListingStatusActive,
		"listing_expires_at": bson.M{"$lte": now.UTC()},
	})
}

func (r *MongoEventRepository) ExpireListing(ctx context.Context, id string, now time.Time) (bool, error) {
	filter := bson.M{
		"_id":                id,
		"listing_status":     domain.ListingStatusActive,
		"listing_expires_at": bson.M{"$lte": now.UTC()},
	}
	update := bson.M{"$set": bson.M{
		"listing_status": domain.ListingStatusExpired,
		"updated_at":     time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to expire listing: %w", err)
	}
	return result.MatchedCount == 1, nil
}

func (r *MongoEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoEventRepository) set(ctx context.Context, id string, fields bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoEventRepository) exists(ctx context.Context, id string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoEventRepository) find(ctx context.Context, filter bson.M) ([]*domain.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*domain.Event{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		events = append(events, mapBsonToEvent(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return events, nil
}

func mapBsonToEvent(raw bson.M) *domain.Event {
	event := &domain.Event{}

	if id, ok := raw["_id"].(string); ok {
		event.ID = id
	}
	if title, ok := raw["title"].(string); ok {
		event.Title = title
	}
	if desc, ok := raw["description"].(string); ok {
		event.Description = desc
	}
	if loc, ok := raw["location"].(string); ok {
		event.Location = loc
	}
	if cat, ok := raw["category"].(string); ok {
		event.Category = cat
	}
	if status, ok := raw["listing_status"].(string); ok {
		event.ListingStatus = status
	}
	if img, ok := raw["image_url"].(string); ok {
		event.ImageURL = img
	}
	if org, ok := raw["organizer_id"].(string); ok {
		event.OrganizerID = org
	}
	event.Days = intFromBSON(raw["days"])
	event.ListingFee = decimalFromBSON(raw["listing_fee"])
	event.Date = timeFromBSON(raw["date"])
	event.CreatedAt = timeFromBSON(raw["created_at"])
	event.UpdatedAt = timeFromBSON(raw["updated_at"])
	if _, ok := raw["listing_expires_at"]; ok {
		if expires := timeFromBSON(raw["listing_expires_at"]); !expires.IsZero() {
			event.ListingExpiresAt = &expires
		}
	}

	return event
}
