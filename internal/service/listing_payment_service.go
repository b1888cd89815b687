package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/infrastructure/ipaymu"
)

// SupportedBanks are the virtual account banks accepted at checkout
var SupportedBanks = []string{"BCA", "Mandiri", "BNI"}

// ListingPaymentService charges organizers for event listings
type ListingPaymentService struct {
	invoiceRepo domain.InvoiceRepository
	eventRepo   domain.EventRepository
	userRepo    domain.UserRepository
	provider    PaymentProvider
	apiKey      string
	now         func() time.Time
}

func NewListingPaymentService(
	invoiceRepo domain.InvoiceRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	provider PaymentProvider,
	apiKey string,
) *ListingPaymentService {
	return &ListingPaymentService{
		invoiceRepo: invoiceRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		provider:    provider,
		apiKey:      apiKey,
		now:         time.Now,
	}
}

// CheckoutResult is the invoice to pay and whether it was reused
type CheckoutResult struct {
	Invoice *domain.Invoice
	Reused  bool
}

// Checkout returns the pending invoice for the event's listing fee, creating
// one with a fresh virtual account when none is open.
func (s *ListingPaymentService) Checkout(ctx context.Context, userID, eventID, bank string) (*CheckoutResult, error) {
	bank = normalizeBank(bank)
	if bank == "" {
		return nil, fmt.Errorf("%w: payment_method must be one of %s", domain.ErrInvalidInput, strings.Join(SupportedBanks, ", "))
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != userID {
		return nil, domain.ErrForbidden
	}
	if !event.ListingFee.IsPositive() {
		return nil, fmt.Errorf("%w: listing is free", domain.ErrInvalidInput)
	}

	existing, err := s.invoiceRepo.GetPendingByUserAndEvent(ctx, userID, eventID)
	if err == nil {
		return &CheckoutResult{Invoice: existing, Reused: true}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing invoices: %w", err)
	}

	req := VARequest{
		ReferenceID: event.ID,
		Bank:        bank,
		Amount:      event.ListingFee,
	}
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		req.PayerName = user.DisplayName()
		req.PayerEmail = user.Email
	}

	va, err := s.provider.GenerateVA(ctx, req)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		UserID:           userID,
		EventID:          eventID,
		Amount:           event.ListingFee,
		Days:             event.Days,
		Status:           domain.InvoiceStatusPending,
		VANumber:         va.VANumber,
		PaymentMethod:    bank,
		PaymentSessionID: va.SessionID,
		ExpiryDate:       va.ExpiresAt,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	log.Printf("[Checkout] Created invoice %s for event %s: %s via %s", invoice.ID, eventID, invoice.Amount.StringFixed(2), bank)
	return &CheckoutResult{Invoice: invoice}, nil
}

// GetInvoice returns an invoice to its owner
func (s *ListingPaymentService) GetInvoice(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

// PaymentNotification is a gateway callback
type PaymentNotification struct {
	SessionID string
	VA        string
	Status    string
	Signature string
}

// NotificationOutcome describes what a callback changed
type NotificationOutcome string

const (
	OutcomeProcessed        NotificationOutcome = "payment processed"
	OutcomeAlreadyProcessed NotificationOutcome = "already processed"
	OutcomeAcknowledged     NotificationOutcome = "status acknowledged"
)

// HandleNotification verifies a gateway callback and, on a successful
// payment, marks the invoice paid and extends the event listing. A paid
// invoice whose listing was never extended is applied again on redelivery;
// each invoice extends its listing at most once.
func (s *ListingPaymentService) HandleNotification(ctx context.Context, n PaymentNotification) (NotificationOutcome, error) {
	if !ipaymu.VerifyNotification(s.apiKey, n.VA, n.SessionID, n.Status, n.Signature) {
		log.Printf("[Webhook] Signature verification failed for sid=%s", n.SessionID)
		return "", fmt.Errorf("%w: invalid signature", domain.ErrUnauthorized)
	}

	invoice, err := s.invoiceRepo.GetByPaymentSessionID(ctx, n.SessionID)
	if err != nil {
		return "", err
	}

	if n.Status != ipaymu.NotificationStatusPaid {
		if n.Status == ipaymu.NotificationStatusExpired && invoice.Status == domain.InvoiceStatusPending {
			if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, domain.InvoiceStatusExpired); err != nil {
				return "", err
			}
		}
		log.Printf("[Webhook] Payment not successful: status=%s, sid=%s", n.Status, n.SessionID)
		return OutcomeAcknowledged, nil
	}

	if invoice.Status == domain.InvoiceStatusPaid {
		if invoice.ListedAt != nil {
			return OutcomeAlreadyProcessed, nil
		}
		log.Printf("[Webhook] Invoice %s paid but not yet listed, retrying activation", invoice.ID)
	} else if err := s.invoiceRepo.MarkPaid(ctx, invoice.ID, s.now().UTC()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		// ErrNotFound means a concurrent delivery marked it paid; ActivateListing
		// still applies the invoice only once.
		return "", err
	}

	return s.applyToListing(ctx, invoice)
}

func (s *ListingPaymentService) applyToListing(ctx context.Context, invoice *domain.Invoice) (NotificationOutcome, error) {
	now := s.now().UTC()

	event, err := s.eventRepo.GetByID(ctx, invoice.EventID)
	if err != nil {
		return "", fmt.Errorf("invoice %s paid but event lookup failed: %w", invoice.ID, err)
	}

	var currentEnd *time.Time
	if event.ListingStatus == domain.ListingStatusActive {
		currentEnd = event.ListingExpiresAt
	}
	expires := domain.CalculateListingEndDate(currentEnd, invoice.Days, now)

	applied, err := s.eventRepo.ActivateListing(ctx, event.ID, invoice.ID, expires)
	if err != nil {
		return "", fmt.Errorf("invoice %s paid but listing update failed: %w", invoice.ID, err)
	}
	if err := s.invoiceRepo.MarkListed(ctx, invoice.ID, now); err != nil {
		return "", fmt.Errorf("invoice %s listed but not recorded: %w", invoice.ID, err)
	}
	if !applied {
		return OutcomeAlreadyProcessed, nil
	}

	log.Printf("[Webhook] Payment processed: invoice=%s, event=%s, listed until %s",
		invoice.ID, event.ID, expires.Format(time.RFC3339))
	return OutcomeProcessed, nil
}

func normalizeBank(bank string) string {
	for _, b := range SupportedBanks {
		if strings.EqualFold(b, strings.TrimSpace(bank)) {
			return b
		}
	}
	return ""
}
