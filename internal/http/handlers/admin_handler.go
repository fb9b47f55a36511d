package handlers

import (
	"github.com/gofiber/fiber/v2"

	"glowcandles/internal/domain"
	applog "glowcandles/internal/log"
	"glowcandles/internal/services"
	"glowcandles/internal/validate"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Admin.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, "admin.dashboard", err)
	}
	return ok(c, d)
}

// GET /api/admin/orders?page=
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	page, err := h.Admin.Orders(c.UserContext(), validate.Page(c.Query("page")))
	if err != nil {
		return respondError(c, "admin.orders.list", err)
	}
	return ok(c, page)
}

// GET /api/admin/orders/:id
func (h *AdminHandler) Order(c *fiber.Ctx) error {
	o, err := h.Admin.Order(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "admin.orders.get", err)
	}
	return ok(c, o)
}

type statusRequest struct {
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
}

// PUT /api/admin/orders/:id/status {status}
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var in statusRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, "admin.orders.status", err)
	}
	id := c.Params("id")
	o, err := h.Admin.UpdateOrderStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return respondError(c, "admin.orders.status", err)
	}
	applog.Audit(c, "admin.orders.status", map[string]any{"order_id": id, "status": in.Status})
	return c.JSON(envelope{Status: "success", Message: "Order status updated", Data: o})
}

// PUT /api/admin/orders/:id/payment-status {paymentStatus}
func (h *AdminHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var in statusRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, "admin.orders.payment_status", err)
	}
	id := c.Params("id")
	o, err := h.Admin.UpdatePaymentStatus(c.UserContext(), id, in.PaymentStatus)
	if err != nil {
		return respondError(c, "admin.orders.payment_status", err)
	}
	applog.Audit(c, "admin.orders.payment_status", map[string]any{"order_id": id, "payment_status": in.PaymentStatus})
	return c.JSON(envelope{Status: "success", Message: "Payment status updated", Data: o})
}

// GET /api/admin/products?page=
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	page, err := h.Admin.Products(c.UserContext(), validate.Page(c.Query("page")))
	if err != nil {
		return respondError(c, "admin.products.list", err)
	}
	return ok(c, page)
}

type stockRequest struct {
	StockQuantity *int `json:"stockQuantity"`
}

// PUT /api/admin/products/:id/stock {stockQuantity}
func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	var in stockRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, "admin.products.stock", err)
	}
	if in.StockQuantity == nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "stockQuantity"})
		return fail(c, fiber.StatusBadRequest, "Validation failed", validate.FieldError{Field: "stockQuantity", Message: "is required"})
	}
	id := c.Params("id")
	p, err := h.Admin.UpdateStock(c.UserContext(), id, *in.StockQuantity)
	if err != nil {
		return respondError(c, "admin.products.stock", err)
	}
	applog.Audit(c, "admin.products.stock", map[string]any{"product_id": id, "qty": *in.StockQuantity})
	return c.JSON(envelope{Status: "success", Message: "Stock updated", Data: p})
}

// GET /api/admin/notifications?page=
func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	page, err := h.Admin.Notifications(c.UserContext(), validate.Page(c.Query("page")))
	if err != nil {
		return respondError(c, "admin.notifications.list", err)
	}
	return ok(c, page)
}

// PUT /api/admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *fiber.Ctx) error {
	n, err := h.Admin.MarkNotificationRead(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "admin.notifications.read", err)
	}
	return ok(c, n)
}
