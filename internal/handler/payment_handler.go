package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/middleware"
	"github.com/mansoorceksport/eventhub/internal/service"
)

// PaymentHandler handles listing checkout and invoice status
type PaymentHandler struct {
	payments *service.ListingPaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *service.ListingPaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CheckoutRequest represents the request body for checkout
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"` // BCA, Mandiri, BNI
}

// InvoiceResponse represents the invoice details shown to the payer
type InvoiceResponse struct {
	ID            string `json:"id"`
	EventID       string `json:"event_id"`
	VANumber      string `json:"va_number"`
	Amount        string `json:"amount"`
	Days          int    `json:"days"`
	PaymentMethod string `json:"payment_method"`
	ExpiryDate    string `json:"expiry_date"` // ISO 8601 format
	Status        string `json:"status"`
	PaidAt        string `json:"paid_at,omitempty"`
}

func toInvoiceResponse(invoice *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            invoice.ID,
		EventID:       invoice.EventID,
		VANumber:      invoice.VANumber,
		Amount:        invoice.Amount.StringFixed(2),
		Days:          invoice.Days,
		PaymentMethod: invoice.PaymentMethod,
		ExpiryDate:    invoice.ExpiryDate.Format(time.RFC3339),
		Status:        invoice.Status,
	}
	if invoice.PaidAt != nil {
		resp.PaidAt = invoice.PaidAt.Format(time.RFC3339)
	}
	return resp
}

// Checkout handles POST /api/events/:id/listing/checkout.
// Returns the open invoice if one exists, otherwise creates one with a new VA.
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.payments.Checkout(c.UserContext(), userID, c.Params("id"), req.PaymentMethod)
	if err != nil {
		return fail(c, err, "Checkout", "payment service unavailable, please try again later")
	}

	status := fiber.StatusCreated
	if result.Reused {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    toInvoiceResponse(result.Invoice),
	})
}

// GetInvoiceStatus handles GET /api/payments/status/:id
func (h *PaymentHandler) GetInvoiceStatus(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	invoice, err := h.payments.GetInvoice(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return fail(c, err, "GetInvoiceStatus", "failed to fetch invoice")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    toInvoiceResponse(invoice),
	})
}
