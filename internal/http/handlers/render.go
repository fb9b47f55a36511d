package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	applog "glowcandles/internal/log"
	"glowcandles/internal/services"
	"glowcandles/internal/token"
	"glowcandles/internal/validate"
)

var errBadBody = errors.New("invalid request body")

type envelope struct {
	Status  string                `json:"status"`
	Message string                `json:"message,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(envelope{Status: "success", Data: data})
}

func created(c *fiber.Ctx, msg string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Status: "success", Message: msg, Data: data})
}

func fail(c *fiber.Ctx, status int, msg string, fields ...validate.FieldError) error {
	return c.Status(status).JSON(envelope{Status: "error", Message: msg, Errors: fields})
}

// respondError maps service errors onto status codes. Anything unrecognised
// is logged with detail and answered with a generic 500.
func respondError(c *fiber.Ctx, action string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, errBadBody):
		applog.Security(c, "validation.body", map[string]any{"op": action, "error": err.Error()})
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	case errors.As(err, &verr):
		applog.Security(c, "validation.fail", map[string]any{"op": action, "fields": verr.Fields})
		return fail(c, fiber.StatusBadRequest, "Validation failed", verr.Fields...)
	case errors.Is(err, services.ErrInvalidSignature):
		applog.Security(c, action+".signature", nil)
		return fail(c, fiber.StatusBadRequest, "Invalid payment signature")
	case errors.Is(err, services.ErrBadCredentials), errors.Is(err, token.ErrInvalid):
		applog.Security(c, action+".unauthorized", nil)
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		applog.Security(c, action+".forbidden", nil)
		return fail(c, fiber.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrCartItemNotFound):
		applog.Info(c, action+".not_found", map[string]any{"error": err.Error()})
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrPaymentMethodMismatch),
		errors.Is(err, services.ErrEmailTaken):
		applog.Info(c, action+".conflict", map[string]any{"error": err.Error()})
		return fail(c, fiber.StatusConflict, err.Error())
	}
	applog.Error(c, action, err, nil)
	return fail(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
}

// bind parses the JSON body into v.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
