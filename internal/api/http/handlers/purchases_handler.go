package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// PurchasesHandler exposes checkout, the processor webhook, and the caller's
// purchase history.
type PurchasesHandler struct {
	purchases *service.PurchaseService
}

// NewPurchasesHandler constructs handler.
func NewPurchasesHandler(purchaseService *service.PurchaseService) *PurchasesHandler {
	return &PurchasesHandler{purchases: purchaseService}
}

// Checkout handles POST /api/purchases/checkout.
func (h *PurchasesHandler) Checkout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	url, err := h.purchases.Checkout(c.UserContext(), principal.User.ID, req.BookID)
	if err != nil {
		return err
	}
	return c.JSON(dto.CheckoutResponse{URL: url})
}

// Webhook handles POST /api/payments/webhook. The raw body is verified
// against the processor signature header before anything is parsed.
func (h *PurchasesHandler) Webhook(c *fiber.Ctx) error {
	if err := h.purchases.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}

// List handles GET /api/purchases.
func (h *PurchasesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	purchases, err := h.purchases.ListForUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(purchases)
}
