package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "glowcandles/internal/log"
	"glowcandles/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.CreateOrderInput
	if err := bind(c, &in); err != nil {
		return respondError(c, "order.create", err)
	}
	sum, err := h.Order.Create(c.UserContext(), p, in)
	if err != nil {
		return respondError(c, "order.create", err)
	}
	applog.Audit(c, "order.create", map[string]any{
		"order_id":     sum.ID,
		"order_number": sum.OrderNumber,
		"total":        sum.TotalAmount.StringFixed(2),
		"method":       sum.PaymentMethod,
	})
	return created(c, "Order created successfully", sum)
}

// POST /api/orders/guest
func (h *OrderHandler) CreateGuest(c *fiber.Ctx) error {
	var in services.GuestOrderInput
	if err := bind(c, &in); err != nil {
		return respondError(c, "order.create_guest", err)
	}
	sum, err := h.Order.CreateGuest(c.UserContext(), in)
	if err != nil {
		return respondError(c, "order.create_guest", err)
	}
	applog.Audit(c, "order.create_guest", map[string]any{
		"order_id":       sum.ID,
		"order_number":   sum.OrderNumber,
		"total":          sum.TotalAmount.StringFixed(2),
		"method":         sum.PaymentMethod,
		"payment_status": sum.PaymentStatus,
	})
	return created(c, "Order created successfully", sum)
}

// GET /api/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	p, _ := principal(c)
	orders, err := h.Order.List(c.UserContext(), p)
	if err != nil {
		return respondError(c, "order.history", err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	p, _ := principal(c)
	o, err := h.Order.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": c.Params("id")})
		}
		return respondError(c, "order.view", err)
	}
	return ok(c, o)
}
