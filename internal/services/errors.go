package services

import (
	"errors"
	"strings"

	"glowcandles/internal/validate"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrEmptyItems            = errors.New("at least one item is required")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOrderNotFound         = errors.New("order not found")
	ErrAlreadyProcessed      = errors.New("order payment already processed")
	ErrPaymentMethodMismatch = errors.New("payment method does not match order")
	ErrInvalidSignature      = errors.New("invalid payment signature")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrCartItemNotFound      = errors.New("item not in cart")
	ErrBadCredentials        = errors.New("invalid email or password")
	ErrEmailTaken            = errors.New("email already registered")
	ErrForbidden             = errors.New("forbidden")
)

// ValidationError carries field-level detail. It matches ErrValidation and,
// when set, a more specific cause such as ErrEmptyItems.
type ValidationError struct {
	Fields []validate.FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.cause != nil && target == e.cause)
}

func invalid(cause error, field, msg string) error {
	return &ValidationError{Fields: []validate.FieldError{{Field: field, Message: msg}}, cause: cause}
}

// check runs struct validation and wraps failures in a ValidationError.
func check(v any) error {
	if fields := validate.Struct(v); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
