package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements domain.UserRepository
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	coll := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// firebase_uid is sparse (allows empty values, only indexes non-empty)
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "firebase_uid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	return &MongoUserRepository{
		collection: coll,
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	objID := primitive.NewObjectID()
	user.ID = objID.Hex()

	doc := bson.M{
		"_id":               objID,
		"email":             user.Email,
		"first_name":        user.FirstName,
		"last_name":         user.LastName,
		"profile_image_url": user.ProfileImageURL,
		"roles":             user.Roles,
		"created_at":        user.CreatedAt,
		"updated_at":        user.UpdatedAt,
	}

	if user.FirebaseUID != "" {
		doc["firebase_uid"] = user.FirebaseUID
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": uid})
}

func (r *MongoUserRepository) UpdateFirebaseUID(ctx context.Context, userID string, firebaseUID string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$set": bson.M{"firebase_uid": firebaseUID, "updated_at": time.Now().UTC()},
	})
}

func (r *MongoUserRepository) AddRole(ctx context.Context, userID string, role string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return mapBsonToUser(raw), nil
}

func (r *MongoUserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapBsonToUser(raw bson.M) *domain.User {
	user := &domain.User{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	if uid, ok := raw["firebase_uid"].(string); ok {
		user.FirebaseUID = uid
	}
	if email, ok := raw["email"].(string); ok {
		user.Email = email
	}
	if first, ok := raw["first_name"].(string); ok {
		user.FirstName = first
	}
	if last, ok := raw["last_name"].(string); ok {
		user.LastName = last
	}
	if img, ok := raw["profile_image_url"].(string); ok {
		user.ProfileImageURL = img
	}
	user.CreatedAt = timeFromBSON(raw["created_at"])
	user.UpdatedAt = timeFromBSON(raw["updated_at"])

	if rolesArray, ok := raw["roles"].(primitive.A); ok {
		user.Roles = make([]string, 0, len(rolesArray))
		for _, r := range rolesArray {
			if roleStr, ok := r.(string); ok {
				user.Roles = append(user.Roles, roleStr)
			}
		}
	}

	return user
}
