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

// MongoAdminSettingRepository implements domain.AdminSettingRepository
type MongoAdminSettingRepository struct {
	collection *mongo.Collection
}

func NewMongoAdminSettingRepository(db *mongo.Database) *MongoAdminSettingRepository {
	coll := db.Collection("admin_settings")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoAdminSettingRepository{collection: coll}
}

type adminSettingDoc struct {
	ID          string    `bson:"_id"`
	Key         string    `bson:"key"`
	Value       string    `bson:"value"`
	IsEncrypted bool      `bson:"is_encrypted"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d adminSettingDoc) toDomain() *domain.AdminSetting {
	return &domain.AdminSetting{
		ID:          d.ID,
		Key:         d.Key,
		Value:       d.Value,
		IsEncrypted: d.IsEncrypted,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *MongoAdminSettingRepository) GetByKey(ctx context.Context, key string) (*domain.AdminSetting, error) {
	var doc adminSettingDoc
	if err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin setting: %w", err)
	}
	return doc.toDomain(), nil
}

// Upsert writes the value for setting.Key and fills in the stored ID and timestamps
func (r *MongoAdminSettingRepository) Upsert(ctx context.Context, setting *domain.AdminSetting) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"value":        setting.Value,
			"is_encrypted": setting.IsEncrypted,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        ulid.Make().String(),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc adminSettingDoc
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"key": setting.Key}, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("failed to save admin setting: %w", err)
	}

	*setting = *doc.toDomain()
	return nil
}

func (r *MongoAdminSettingRepository) GetAll(ctx context.Context) ([]*domain.AdminSetting, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list admin settings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []adminSettingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode admin settings: %w", err)
	}

	settings := make([]*domain.AdminSetting, 0, len(docs))
	for _, d := range docs {
		settings = append(settings, d.toDomain())
	}
	return settings, nil
}

// MongoPaymentSettingsRepository implements domain.PaymentSettingsRepository
type MongoPaymentSettingsRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentSettingsRepository(db *mongo.Database) *MongoPaymentSettingsRepository {
	return &MongoPaymentSettingsRepository{collection: db.Collection("payment_settings")}
}

type paymentSettingsDoc struct {
	ID             string    `bson:"_id"`
	IsPaidVersion  bool      `bson:"is_paid_version"`
	MerchantID     string    `bson:"merchant_id"`
	IntegrationID  string    `bson:"integration_id"`
	IntegrationKey string    `bson:"integration_key"`
	IsActive       bool      `bson:"is_active"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (r *MongoPaymentSettingsRepository) GetActive(ctx context.Context) (*domain.PaymentSettings, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc paymentSettingsDoc
	if err := r.collection.FindOne(ctx, bson.M{"is_active": true}, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment settings: %w", err)
	}

	return &domain.PaymentSettings{
		ID:             doc.ID,
		IsPaidVersion:  doc.IsPaidVersion,
		MerchantID:     doc.MerchantID,
		IntegrationID:  doc.IntegrationID,
		IntegrationKey: doc.IntegrationKey,
		IsActive:       doc.IsActive,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func (r *MongoPaymentSettingsRepository) Create(ctx context.Context, s *domain.PaymentSettings) error {
	now := time.Now().UTC()
	s.ID = ulid.Make().String()
	s.IsActive = true
	s.CreatedAt = now
	s.UpdatedAt = now

	doc := paymentSettingsDoc{
		ID:             s.ID,
		IsPaidVersion:  s.IsPaidVersion,
		MerchantID:     s.MerchantID,
		IntegrationID:  s.IntegrationID,
		IntegrationKey: s.IntegrationKey,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create payment settings: %w", err)
	}
	return nil
}

func (r *MongoPaymentSettingsRepository) Update(ctx context.Context, s *domain.PaymentSettings) error {
	s.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"is_paid_version": s.IsPaidVersion,
			"merchant_id":     s.MerchantID,
			"integration_id":  s.IntegrationID,
			"integration_key": s.IntegrationKey,
			"updated_at":      s.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": s.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update payment settings: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
