package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"glowcandles/internal/domain"
	"glowcandles/internal/metrics"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
)

type VerifyInput struct {
	OrderID   string `json:"orderId" validate:"required,max=64"`
	PaymentID string `json:"paymentId" validate:"required,max=100"`
	Signature string `json:"signature" validate:"required,hexadecimal,max=128"`
}

type PaymentService struct {
	Store  *repos.Store
	Events relay.Publisher
	Log    *zap.Logger

	secret []byte
}

func NewPaymentService(store *repos.Store, events relay.Publisher, log *zap.Logger, secret string) *PaymentService {
	if events == nil {
		events = relay.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{Store: store, Events: events, Log: log, secret: []byte(secret)}
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID" under the shared
// gateway secret.
func (s *PaymentService) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) validSignature(orderID, paymentID, sig string) bool {
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(sig)))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(s.Sign(orderID, paymentID))
	return hmac.Equal(got, want)
}

// VerifyOnline records a gateway-confirmed payment. A bad signature leaves
// the order untouched.
func (s *PaymentService) VerifyOnline(ctx context.Context, p domain.Principal, in VerifyInput) (*domain.OrderSummary, error) {
	sum, err := s.verifyOnline(ctx, p, in)
	metrics.RecordOrderOperation("verify_payment", err == nil)
	return sum, err
}

func (s *PaymentService) verifyOnline(ctx context.Context, p domain.Principal, in VerifyInput) (*domain.OrderSummary, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if !s.validSignature(in.OrderID, in.PaymentID, in.Signature) {
		s.Log.Warn("payment signature mismatch",
			zap.Bool("security", true), zap.String("order_id", in.OrderID), zap.String("user_id", p.UserID))
		return nil, ErrInvalidSignature
	}

	var order *domain.Order
	err := s.Store.WithTx(ctx, func(tx *repos.Store) error {
		o, err := s.ownedOrder(ctx, tx, p, in.OrderID)
		if err != nil {
			return err
		}
		if !o.PaymentMethod.Online() {
			return ErrPaymentMethodMismatch
		}
		if o.PaymentStatus != domain.PaymentPending {
			return ErrAlreadyProcessed
		}
		if err := tx.Payments.Create(ctx, &domain.Payment{
			ID: uuid.NewString(), OrderID: o.ID, PaymentID: in.PaymentID,
			Gateway: string(domain.MethodRazorpay), Amount: o.TotalAmount, Status: domain.SettlementCaptured,
		}); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		if err := tx.Orders.MarkPaid(ctx, o.ID, in.PaymentID); err != nil {
			return err
		}
		o.PaymentStatus, o.Status, o.PaymentID = domain.PaymentPaid, domain.StatusConfirmed, in.PaymentID
		order = o
		return tx.Notifications.Create(ctx, &domain.Notification{
			ID:      uuid.NewString(),
			Type:    domain.NotifyPaymentReceived,
			Title:   "Payment Received",
			Message: fmt.Sprintf("Payment received for order #%s - ₹%s", o.OrderNumber, o.TotalAmount.StringFixed(2)),
			OrderID: &o.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("payment verified", zap.String("order_number", order.OrderNumber), zap.String("payment_id", in.PaymentID))
	s.Events.Publish(ctx, relay.Event{
		Kind: relay.KindPaymentReceived, OrderID: order.ID, OrderNumber: order.OrderNumber, Amount: order.TotalAmount,
	})
	sum := order.Summary()
	return &sum, nil
}

// ConfirmCOD confirms a cash-on-delivery order and opens a pending
// settlement record for it.
func (s *PaymentService) ConfirmCOD(ctx context.Context, p domain.Principal, orderID string) (*domain.OrderSummary, error) {
	sum, err := s.confirmCOD(ctx, p, orderID)
	metrics.RecordOrderOperation("confirm_cod", err == nil)
	return sum, err
}

func (s *PaymentService) confirmCOD(ctx context.Context, p domain.Principal, orderID string) (*domain.OrderSummary, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, invalid(ErrValidation, "orderId", "is required")
	}
	var order *domain.Order
	err := s.Store.WithTx(ctx, func(tx *repos.Store) error {
		o, err := s.ownedOrder(ctx, tx, p, orderID)
		if err != nil {
			return err
		}
		if o.PaymentMethod != domain.MethodCOD {
			return ErrPaymentMethodMismatch
		}
		if o.Status != domain.StatusPending {
			return ErrAlreadyProcessed
		}
		if err := tx.Orders.UpdateStatus(ctx, o.ID, domain.StatusConfirmed); err != nil {
			return err
		}
		if err := tx.Payments.Create(ctx, &domain.Payment{
			ID: uuid.NewString(), OrderID: o.ID, PaymentID: "COD-" + o.OrderNumber,
			Gateway: string(domain.MethodCOD), Amount: o.TotalAmount, Status: domain.SettlementPending,
		}); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		o.Status = domain.StatusConfirmed
		order = o
		return tx.Notifications.Create(ctx, &domain.Notification{
			ID:      uuid.NewString(),
			Type:    domain.NotifyNewOrder,
			Title:   "New COD Order",
			Message: fmt.Sprintf("New COD order #%s - ₹%s", o.OrderNumber, o.TotalAmount.StringFixed(2)),
			OrderID: &o.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("cod order confirmed", zap.String("order_number", order.OrderNumber))
	s.Events.Publish(ctx, relay.Event{
		Kind: relay.KindNewCODOrder, OrderID: order.ID, OrderNumber: order.OrderNumber, Amount: order.TotalAmount,
	})
	sum := order.Summary()
	return &sum, nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, tx *repos.Store, p domain.Principal, id string) (*domain.Order, error) {
	o, err := tx.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !p.Owns(o.UserID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
