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

// MongoListingPackageRepository implements domain.ListingPackageRepository
type MongoListingPackageRepository struct {
	collection *mongo.Collection
}

// NewMongoListingPackageRepository creates a new listing package repository
func NewMongoListingPackageRepository(db *mongo.Database) *MongoListingPackageRepository {
	return &MongoListingPackageRepository{
		collection: db.Collection("listing_packages"),
	}
}

func (r *MongoListingPackageRepository) Create(ctx context.Context, pkg *domain.ListingPackage) error {
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	if pkg.ID == "" {
		pkg.ID = ulid.Make().String()
	}

	price, err := toDecimal128(pkg.Price)
	if err != nil {
		return err
	}

	doc := bson.M{
		"_id":           pkg.ID,
		"name":          pkg.Name,
		"description":   pkg.Description,
		"duration_days": pkg.DurationDays,
		"price":         price,
		"is_active":     pkg.IsActive,
		"created_at":    pkg.CreatedAt,
		"updated_at":    pkg.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create listing package: %w", err)
	}
	return nil
}

func (r *MongoListingPackageRepository) GetByID(ctx context.Context, id string) (*domain.ListingPackage, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing package: %w", err)
	}
	return mapBsonToListingPackage(raw), nil
}

func (r *MongoListingPackageRepository) GetActivePackages(ctx context.Context) ([]*domain.ListingPackage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "duration_days", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active listing packages: %w", err)
	}
	defer cursor.Close(ctx)

	packages := []*domain.ListingPackage{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		packages = append(packages, mapBsonToListingPackage(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listing packages: %w", err)
	}
	return packages, nil
}

func (r *MongoListingPackageRepository) Update(ctx context.Context, pkg *domain.ListingPackage) error {
	pkg.UpdatedAt = time.Now().UTC()

	price, err := toDecimal128(pkg.Price)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"name":          pkg.Name,
			"description":   pkg.Description,
			"duration_days": pkg.DurationDays,
			"price":         price,
			"is_active":     pkg.IsActive,
			"updated_at":    pkg.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": pkg.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing package: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a package so past invoices keep their reference
func (r *MongoListingPackageRepository) Deactivate(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate listing package: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoListingPackageRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listing packages: %w", err)
	}
	return n, nil
}

func mapBsonToListingPackage(raw bson.M) *domain.ListingPackage {
	pkg := &domain.ListingPackage{}

	if id, ok := raw["_id"].(string); ok {
		pkg.ID = id
	}
	if name, ok := raw["name"].(string); ok {
		pkg.Name = name
	}
	if desc, ok := raw["description"].(string); ok {
		pkg.Description = desc
	}
	pkg.DurationDays = intFromBSON(raw["duration_days"])
	pkg.Price = decimalFromBSON(raw["price"])
	if isActive, ok := raw["is_active"].(bool); ok {
		pkg.IsActive = isActive
	}
	pkg.CreatedAt = timeFromBSON(raw["created_at"])
	pkg.UpdatedAt = timeFromBSON(raw["updated_at"])

	return pkg
}

func intFromBSON(v interface{}) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func timeFromBSON(v interface{}) time.Time {
	if t, ok := v.(interface{ Time() time.Time }); ok {
		return t.Time().UTC()
	}
	return time.Time{}
}
