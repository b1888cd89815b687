package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/service"
)

// WebhookHandler handles external payment webhooks
type WebhookHandler struct {
	payments *service.ListingPaymentService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(payments *service.ListingPaymentService) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// IPAYMUWebhookRequest represents the callback payload from iPaymu.
// iPaymu posts form data; JSON is accepted too.
type IPAYMUWebhookRequest struct {
	SID         string `json:"sid" form:"sid"`                   // Session ID
	VA          string `json:"va" form:"va"`                     // Virtual Account number
	Status      string `json:"status" form:"status"`             // "berhasil", "pending", "expired"
	ReferenceID string `json:"reference_id" form:"reference_id"` // our event ID
	TrxID       int64  `json:"trx_id" form:"trx_id"`
	Amount      string `json:"amount" form:"amount"`
	Signature   string `json:"signature" form:"signature"`
}

// IPAYMUWebhook handles POST /api/payments/webhook/ipaymu.
// Public endpoint; authenticity comes from the HMAC signature.
func (h *WebhookHandler) IPAYMUWebhook(c *fiber.Ctx) error {
	var req IPAYMUWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Webhook] Failed to parse body: %v", err)
		return badRequest(c, "invalid request body")
	}

	log.Printf("[Webhook] Received callback: sid=%s, status=%s, va=%s, amount=%s",
		req.SID, req.Status, req.VA, req.Amount)

	outcome, err := h.payments.HandleNotification(c.UserContext(), service.PaymentNotification{
		SessionID: req.SID,
		VA:        req.VA,
		Status:    req.Status,
		Signature: req.Signature,
	})
	if err != nil {
		return fail(c, err, "Webhook", "failed to process payment")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": string(outcome),
	})
}
