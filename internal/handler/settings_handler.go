package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/service"
)

// SettingsHandler handles admin and payment settings
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// ListAdminSettings handles GET /api/admin/settings
func (h *SettingsHandler) ListAdminSettings(c *fiber.Ctx) error {
	settings, err := h.settings.ListAdminSettings(c.UserContext())
	if err != nil {
		return fail(c, err, "AdminSettings", "Failed to fetch settings")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    settings,
	})
}

// SaveAdminSettingRequest is the upsert payload
type SaveAdminSettingRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// SaveAdminSetting handles POST /api/admin/settings
func (h *SettingsHandler) SaveAdminSetting(c *fiber.Ctx) error {
	var req SaveAdminSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	setting, err := h.settings.SaveAdminSetting(c.UserContext(), req.Key, req.Value, req.IsEncrypted)
	if err != nil {
		return fail(c, err, "AdminSettings", "Failed to save setting")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    setting,
	})
}

// GetPaymentSettings handles GET /api/admin/payment-settings.
// Public so clients can tell whether listing is free.
func (h *SettingsHandler) GetPaymentSettings(c *fiber.Ctx) error {
	settings, err := h.settings.PaymentSettings(c.UserContext())
	if err != nil {
		return fail(c, err, "PaymentSettings", "Failed to fetch payment settings")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    settings.Masked(),
	})
}

// UpdatePaymentSettingsRequest carries optional fields; omitted ones stay unchanged
type UpdatePaymentSettingsRequest struct {
	IsPaidVersion  *bool   `json:"is_paid_version"`
	MerchantID     *string `json:"merchant_id"`
	IntegrationID  *string `json:"integration_id"`
	IntegrationKey *string `json:"integration_key"`
}

// UpdatePaymentSettings handles POST /api/admin/payment-settings
func (h *SettingsHandler) UpdatePaymentSettings(c *fiber.Ctx) error {
	var req UpdatePaymentSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	settings, err := h.settings.UpdatePaymentSettings(c.UserContext(), domain.PaymentSettingsUpdate{
		IsPaidVersion:  req.IsPaidVersion,
		MerchantID:     req.MerchantID,
		IntegrationID:  req.IntegrationID,
		IntegrationKey: req.IntegrationKey,
	})
	if err != nil {
		return fail(c, err, "PaymentSettings", "Failed to update payment settings")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    settings.Masked(),
	})
}
