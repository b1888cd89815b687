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

// MongoRSVPRepository implements domain.RSVPRepository
type MongoRSVPRepository struct {
	collection *mongo.Collection
}

func NewMongoRSVPRepository(db *mongo.Database) *MongoRSVPRepository {
	coll := db.Collection("rsvps")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One answer per user per event
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoRSVPRepository{collection: coll}
}

type rsvpDoc struct {
	ID        string    `bson:"_id"`
	EventID   string    `bson:"event_id"`
	UserID    string    `bson:"user_id"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d rsvpDoc) toDomain() *domain.RSVP {
	return &domain.RSVP{
		ID:        d.ID,
		EventID:   d.EventID,
		UserID:    d.UserID,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *MongoRSVPRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	now := time.Now().UTC()
	filter := bson.M{"event_id": rsvp.EventID, "user_id": rsvp.UserID}
	update := bson.M{
		"$set": bson.M{
			"status":     rsvp.Status,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        ulid.Make().String(),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc rsvpDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("failed to save rsvp: %w", err)
	}

	*rsvp = *doc.toDomain()
	return nil
}

func (r *MongoRSVPRepository) Delete(ctx context.Context, eventID, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete rsvp: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRSVPRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"event_id": eventID}); err != nil {
		return fmt.Errorf("failed to delete rsvps for event: %w", err)
	}
	return nil
}

func (r *MongoRSVPRepository) GetByUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []rsvpDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rsvps: %w", err)
	}

	rsvps := make([]*domain.RSVP, 0, len(docs))
	for _, d := range docs {
		rsvps = append(rsvps, d.toDomain())
	}
	return rsvps, nil
}

// CountGoingByEvents groups "going" answers per event in a single aggregation.
func (r *MongoRSVPRepository) CountGoingByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"event_id": bson.M{"$in": eventIDs},
			"status":   domain.RSVPStatusGoing,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$event_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count rsvps: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			EventID string `bson:"_id"`
			Count   int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.EventID] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return counts, nil
}

func (r *MongoRSVPRepository) GetStatusesByUser(ctx context.Context, userID string, eventIDs []string) (map[string]string, error) {
	statuses := make(map[string]string, len(eventIDs))
	if userID == "" || len(eventIDs) == 0 {
		return statuses, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id":  userID,
		"event_id": bson.M{"$in": eventIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvp statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []rsvpDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rsvps: %w", err)
	}
	for _, d := range docs {
		statuses[d.EventID] = d.Status
	}
	return statuses, nil
}

// MongoSavedEventRepository implements domain.SavedEventRepository
type MongoSavedEventRepository struct {
	collection *mongo.Collection
}

func NewMongoSavedEventRepository(db *mongo.Database) *MongoSavedEventRepository {
	coll := db.Collection("saved_events")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoSavedEventRepository{collection: coll}
}

type savedEventDoc struct {
	ID        string    `bson:"_id"`
	EventID   string    `bson:"event_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// Save is a no-op when the event is already saved; saved receives the stored record.
func (r *MongoSavedEventRepository) Save(ctx context.Context, saved *domain.SavedEvent) error {
	filter := bson.M{"event_id": saved.EventID, "user_id": saved.UserID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        ulid.Make().String(),
			"created_at": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc savedEventDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	saved.ID = doc.ID
	saved.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoSavedEventRepository) Unsave(ctx context.Context, eventID, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to unsave event: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoSavedEventRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"event_id": eventID}); err != nil {
		return fmt.Errorf("failed to delete saved events: %w", err)
	}
	return nil
}

func (r *MongoSavedEventRepository) GetByUser(ctx context.Context, userID string) ([]*domain.SavedEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []savedEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode saved events: %w", err)
	}

	saved := make([]*domain.SavedEvent, 0, len(docs))
	for _, d := range docs {
		saved = append(saved, &domain.SavedEvent{
			ID:        d.ID,
			EventID:   d.EventID,
			UserID:    d.UserID,
			CreatedAt: d.CreatedAt,
		})
	}
	return saved, nil
}

func (r *MongoSavedEventRepository) GetSavedEventIDs(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(eventIDs))
	if userID == "" || len(eventIDs) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id":  userID,
		"event_id": bson.M{"$in": eventIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get saved events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []savedEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode saved events: %w", err)
	}
	for _, d := range docs {
		result[d.EventID] = true
	}
	return result, nil
}
