package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "glowcandles/internal/log"
	"glowcandles/internal/services"
	"glowcandles/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	p, _ := principal(c)
	cart, err := h.Cart.View(c.UserContext(), p)
	if err != nil {
		return respondError(c, "cart.view", err)
	}
	return ok(c, cart)
}

// POST /api/cart/items {productId, quantity}
func (h *CartHandler) Add(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in cartRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, "cart.add", err)
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	id, valid := validate.ID(in.ProductID)
	if !valid {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return fail(c, fiber.StatusBadRequest, "Validation failed", validate.FieldError{Field: "productId", Message: "is required"})
	}
	cart, err := h.Cart.Add(c.UserContext(), p, id, in.Quantity)
	if err != nil {
		return respondError(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": id, "qty": in.Quantity})
	return ok(c, cart)
}

// PUT /api/cart/items/:productId {quantity}
func (h *CartHandler) Update(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in cartRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, "cart.update", err)
	}
	cart, err := h.Cart.Update(c.UserContext(), p, c.Params("productId"), in.Quantity)
	if err != nil {
		return respondError(c, "cart.update", err)
	}
	return ok(c, cart)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	p, _ := principal(c)
	cart, err := h.Cart.Remove(c.UserContext(), p, c.Params("productId"))
	if err != nil {
		return respondError(c, "cart.remove", err)
	}
	return ok(c, cart)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	p, _ := principal(c)
	if err := h.Cart.Clear(c.UserContext(), p); err != nil {
		return respondError(c, "cart.clear", err)
	}
	return c.JSON(envelope{Status: "success", Message: "Cart cleared"})
}
