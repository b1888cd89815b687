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

// MongoInvoiceRepository implements domain.InvoiceRepository
type MongoInvoiceRepository struct {
	collection *mongo.Collection
}

// NewMongoInvoiceRepository creates a new invoice repository
func NewMongoInvoiceRepository(db *mongo.Database) *MongoInvoiceRepository {
	coll := db.Collection("invoices")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Webhooks look invoices up by gateway session
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "payment_session_id", Value: 1}},
		Options: options.Index().SetSparse(true),
	})

	return &MongoInvoiceRepository{
		collection: coll,
	}
}

func (r *MongoInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	objID := primitive.NewObjectID()
	invoice.ID = objID.Hex()

	amount, err := toDecimal128(invoice.Amount)
	if err != nil {
		return fmt.Errorf("invalid invoice amount: %w", err)
	}

	doc := bson.M{
		"_id":                objID,
		"user_id":            invoice.UserID,
		"event_id":           invoice.EventID,
		"amount":             amount,
		"days":               invoice.Days,
		"status":             invoice.Status,
		"va_number":          invoice.VANumber,
		"payment_method":     invoice.PaymentMethod,
		"payment_session_id": invoice.PaymentSessionID,
		"expiry_date":        invoice.ExpiryDate,
		"created_at":         invoice.CreatedAt,
		"updated_at":         invoice.UpdatedAt,
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *MongoInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetPendingByUserAndEvent finds an existing pending, non-expired invoice for reuse
func (r *MongoInvoiceRepository) GetPendingByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Invoice, error) {
	return r.findOne(ctx, bson.M{
		"user_id":  userID,
		"event_id": eventID,
		"status":   domain.InvoiceStatusPending,
		"expiry_date": bson.M{
			"$gt": time.Now().UTC(),
		},
	})
}

// GetByPaymentSessionID finds an invoice by its payment session ID
func (r *MongoInvoiceRepository) GetByPaymentSessionID(ctx context.Context, sessionID string) (*domain.Invoice, error) {
	return r.findOne(ctx, bson.M{"payment_session_id": sessionID})
}

// MarkPaid moves a pending invoice to paid. Already paid invoices are left untouched
// and reported as ErrNotFound so duplicate webhooks cannot extend a listing twice.
func (r *MongoInvoiceRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	filter := bson.M{"_id": objID, "status": bson.M{"$ne": domain.InvoiceStatusPaid}}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.InvoiceStatusPaid,
			"paid_at":    paidAt.UTC(),
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoInvoiceRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoInvoiceRepository) MarkListed(ctx context.Context, id string, listedAt time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"listed_at":  listedAt.UTC(),
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark invoice listed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoInvoiceRepository) findOne(ctx context.Context, filter bson.M) (*domain.Invoice, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return mapBsonToInvoice(raw), nil
}

func mapBsonToInvoice(raw bson.M) *domain.Invoice {
	invoice := &domain.Invoice{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		invoice.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		invoice.UserID = userID
	}
	if eventID, ok := raw["event_id"].(string); ok {
		invoice.EventID = eventID
	}
	invoice.Amount = decimalFromBSON(raw["amount"])
	invoice.Days = intFromBSON(raw["days"])
	if status, ok := raw["status"].(string); ok {
		invoice.Status = status
	}
	if vaNum, ok := raw["va_number"].(string); ok {
		invoice.VANumber = vaNum
	}
	if paymentMethod, ok := raw["payment_method"].(string); ok {
		invoice.PaymentMethod = paymentMethod
	}
	if sessionID, ok := raw["payment_session_id"].(string); ok {
		invoice.PaymentSessionID = sessionID
	}
	invoice.ExpiryDate = timeFromBSON(raw["expiry_date"])
	if paid, ok := raw["paid_at"].(primitive.DateTime); ok {
		t := paid.Time().UTC()
		invoice.PaidAt = &t
	}
	if listed, ok := raw["listed_at"].(primitive.DateTime); ok {
		t := listed.Time().UTC()
		invoice.ListedAt = &t
	}
	invoice.CreatedAt = timeFromBSON(raw["created_at"])
	invoice.UpdatedAt = timeFromBSON(raw["updated_at"])

	return invoice
}
