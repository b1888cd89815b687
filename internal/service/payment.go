package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mansoorceksport/eventhub/internal/config"
	"github.com/mansoorceksport/eventhub/internal/infrastructure/ipaymu"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// VAResponse represents the response from a payment provider
type VAResponse struct {
	VANumber  string
	SessionID string
	ExpiresAt time.Time
}

// VARequest is a request for a virtual account paying one listing fee
type VARequest struct {
	ReferenceID string
	Bank        string
	Amount      decimal.Decimal
	PayerName   string
	PayerEmail  string
}

// PaymentProvider defines the interface for payment gateway integrations
type PaymentProvider interface {
	// GenerateVA creates a Virtual Account for the given bank and amount
	GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error)
}

// MockIPaymuClient is a PaymentProvider for development without gateway credentials
type MockIPaymuClient struct{}

// IPaymuClientAdapter adapts the ipaymu.Client to PaymentProvider interface
type IPaymuClientAdapter struct {
	client *ipaymu.Client
}

// NewPaymentProvider returns the iPaymu client, or the mock when no credentials are configured
func NewPaymentProvider(cfg config.PaymentConfig) PaymentProvider {
	if cfg.IPaymuAPIKey == "" || cfg.IPaymuVA == "" {
		log.Println("[Payment] Using mock iPaymu client (no credentials configured)")
		return &MockIPaymuClient{}
	}

	webhookURL := ""
	if cfg.NotifyURL != "" {
		webhookURL = strings.TrimRight(cfg.NotifyURL, "/") + "/api/payments/webhook/ipaymu"
	}

	log.Printf("[Payment] Using iPaymu client (base: %s, notify: %s)", cfg.IPaymuBaseURL, webhookURL)
	client := ipaymu.NewClient(ipaymu.Config{
		VA:        cfg.IPaymuVA,
		APIKey:    cfg.IPaymuAPIKey,
		BaseURL:   cfg.IPaymuBaseURL,
		NotifyURL: webhookURL,
	})

	return &IPaymuClientAdapter{client: client}
}

// GenerateVA generates a mock Virtual Account number
func (m *MockIPaymuClient) GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error) {
	sessionID := ulid.Make().String()

	var prefix string
	switch strings.ToUpper(req.Bank) {
	case "BCA":
		prefix = "BCA"
	case "MANDIRI":
		prefix = "MDR"
	case "BNI":
		prefix = "BNI"
	default:
		prefix = "GEN"
	}

	return &VAResponse{
		VANumber:  fmt.Sprintf("8888-MOCK-%s-%s", prefix, sessionID[:8]),
		SessionID: sessionID,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}, nil
}

// GenerateVA creates a Virtual Account via the iPaymu API. The gateway takes
// whole currency units, so the fee is rounded up.
func (a *IPaymuClientAdapter) GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error) {
	resp, err := a.client.CreateDirectVA(
		ctx,
		req.ReferenceID,
		gatewayAmount(req.Amount),
		ipaymu.MapBankCodeToIPAYMU(req.Bank),
		ipaymu.Payer{Name: req.PayerName, Email: req.PayerEmail},
	)
	if err != nil {
		log.Printf("[Payment] iPaymu API error: %v", err)
		return nil, fmt.Errorf("payment provider error: %w", err)
	}

	return &VAResponse{
		VANumber:  resp.VANumber,
		SessionID: resp.SessionID,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

func gatewayAmount(amount decimal.Decimal) int64 {
	return amount.Ceil().IntPart()
}
