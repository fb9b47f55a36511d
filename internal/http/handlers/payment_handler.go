package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "glowcandles/internal/log"
	"glowcandles/internal/services"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

// POST /api/payments/razorpay/verify {orderId, paymentId, signature}
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.VerifyInput
	if err := bind(c, &in); err != nil {
		return respondError(c, "payment.verify", err)
	}
	sum, err := h.Payments.VerifyOnline(c.UserContext(), p, in)
	if err != nil {
		return respondError(c, "payment.verify", err)
	}
	applog.Audit(c, "payment.verify", map[string]any{"order_id": sum.ID, "payment_id": in.PaymentID})
	return c.JSON(envelope{Status: "success", Message: "Payment verified successfully", Data: sum})
}

type codRequest struct {
	OrderID string `json:"orderId"`
}

// POST /api/payments/cod/confirm {orderId}
func (h *PaymentHandler) ConfirmCOD(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in codRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, "payment.cod", err)
	}
	sum, err := h.Payments.ConfirmCOD(c.UserContext(), p, in.OrderID)
	if err != nil {
		return respondError(c, "payment.cod", err)
	}
	applog.Audit(c, "payment.cod", map[string]any{"order_id": sum.ID})
	return c.JSON(envelope{Status: "success", Message: "COD order confirmed", Data: sum})
}
