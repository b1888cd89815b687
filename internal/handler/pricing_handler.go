package handler

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/service"
	"github.com/shopspring/decimal"
)

// PricingHandler serves the listing catalog and price quotes
type PricingHandler struct {
	pricing *service.PricingService
	catalog *service.CatalogService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(pricing *service.PricingService, catalog *service.CatalogService) *PricingHandler {
	return &PricingHandler{
		pricing: pricing,
		catalog: catalog,
	}
}

// CalculatePriceResponse is the quote wire format. Price on a line is its subtotal.
type CalculatePriceResponse struct {
	TotalPrice json.Number         `json:"totalPrice"`
	Breakdown  []PriceLineResponse `json:"breakdown"`
}

// PriceLineResponse is one applied package
type PriceLineResponse struct {
	PackageName string      `json:"packageName"`
	Quantity    int         `json:"quantity"`
	Price       json.Number `json:"price"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// CalculatePrice handles POST /api/calculate-price
func (h *PricingHandler) CalculatePrice(c *fiber.Ctx) error {
	days, err := parseDays(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid number of days",
		})
	}

	result, err := h.pricing.Quote(c.UserContext(), days)
	if err != nil {
		if statusFor(err) == fiber.StatusBadRequest {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid number of days",
			})
		}
		return fail(c, err, "CalculatePrice", "Failed to calculate price")
	}

	resp := CalculatePriceResponse{
		TotalPrice: money(result.TotalPrice),
		Breakdown:  make([]PriceLineResponse, 0, len(result.Breakdown)),
	}
	for _, line := range result.Breakdown {
		resp.Breakdown = append(resp.Breakdown, PriceLineResponse{
			PackageName: line.PackageName,
			Quantity:    line.Quantity,
			Price:       money(line.Subtotal),
		})
	}
	return c.JSON(resp)
}

// parseDays accepts {"days": N} where N is a positive whole number, given
// either as a JSON number or a numeric string. 3.0 counts as whole.
func parseDays(body []byte) (int, error) {
	var req struct {
		Days json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return 0, err
	}
	raw := bytes.TrimSpace(req.Days)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, domain.ErrInvalidDays
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		raw = []byte(s)
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return 0, domain.ErrInvalidDays
	}
	if !d.IsInteger() || d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(domain.MaxListingDays)) {
		return 0, domain.ErrInvalidDays
	}
	return int(d.IntPart()), nil
}

// ListPackages handles GET /api/listing-packages
func (h *PricingHandler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.pricing.Catalog(c.UserContext())
	if err != nil {
		return fail(c, err, "ListPackages", "Failed to fetch listing packages")
	}
	if packages == nil {
		packages = []*domain.ListingPackage{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    packages,
	})
}

// PackageRequest is the admin payload for listing packages. Price accepts a
// decimal string or a JSON number.
type PackageRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	DurationDays *int             `json:"duration_days"`
	Price        *decimal.Decimal `json:"price"`
	IsActive     *bool            `json:"is_active"`
}

// CreatePackage handles POST /api/admin/listing-packages
func (h *PricingHandler) CreatePackage(c *fiber.Ctx) error {
	var req PackageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if req.Price == nil {
		return badRequest(c, "price is required")
	}

	pkg := &domain.ListingPackage{}
	domain.ListingPackageUpdate{
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Price:        req.Price,
	}.Apply(pkg)

	if err := h.catalog.Create(c.UserContext(), pkg); err != nil {
		return fail(c, err, "CreatePackage", "Failed to create listing package")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    pkg,
	})
}

// UpdatePackage handles PUT /api/admin/listing-packages/:id
func (h *PricingHandler) UpdatePackage(c *fiber.Ctx) error {
	var req PackageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	pkg, err := h.catalog.Update(c.UserContext(), c.Params("id"), domain.ListingPackageUpdate{
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Price:        req.Price,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return fail(c, err, "UpdatePackage", "Failed to update listing package")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    pkg,
	})
}

// DeletePackage handles DELETE /api/admin/listing-packages/:id
func (h *PricingHandler) DeletePackage(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "DeletePackage", "Failed to delete listing package")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "listing package deactivated",
	})
}
