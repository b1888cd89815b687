package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status constants
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusExpired = "expired"
	InvoiceStatusFailed  = "failed"
)

// Invoice is a payment intent for an event listing fee
type Invoice struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	EventID          string          `json:"event_id"`
	Amount           decimal.Decimal `json:"amount"`
	Days             int             `json:"days"`
	Status           string          `json:"status"` // pending, paid, expired, failed
	VANumber         string          `json:"va_number"`
	PaymentMethod    string          `json:"payment_method"` // BCA, Mandiri, BNI
	PaymentSessionID string          `json:"payment_session_id"`
	ExpiryDate       time.Time       `json:"expiry_date"` // VA expires after 24h
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	ListedAt         *time.Time      `json:"listed_at,omitempty"` // when the paid days reached the listing
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// InvoiceRepository defines operations for managing invoices
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	GetPendingByUserAndEvent(ctx context.Context, userID, eventID string) (*Invoice, error)
	GetByPaymentSessionID(ctx context.Context, sessionID string) (*Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status string) error
	// MarkListed records that the invoice's days were applied to its event.
	MarkListed(ctx context.Context, id string, listedAt time.Time) error
}
