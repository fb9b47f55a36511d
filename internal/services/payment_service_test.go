package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowcandles/internal/domain"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
	"glowcandles/internal/services"
)

const secret = "test-gateway-secret"

func placeOrder(t *testing.T, st *repos.Store, user domain.Principal, method domain.PaymentMethod) *domain.OrderSummary {
	t.Helper()
	sum, err := services.NewOrderService(st, nil, nil, false).Create(context.Background(), user, services.CreateOrderInput{
		Items:           []services.OrderItemInput{{ProductID: "candle-rose", Quantity: 1}},
		ShippingAddress: shipping(),
		Payment:         services.PaymentInput{Method: method},
	})
	require.NoError(t, err)
	return sum
}

func TestSignIsStableHex(t *testing.T) {
	svc := services.NewPaymentService(nil, nil, nil, secret)
	a := svc.Sign("order-1", "pay_1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, svc.Sign("order-1", "pay_1"))
	assert.NotEqual(t, a, svc.Sign("order-1", "pay_2"))
	assert.NotEqual(t, a, services.NewPaymentService(nil, nil, nil, "other").Sign("order-1", "pay_1"))
}

func TestVerifyOnlineMarksPaid(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	user := addUser(t, st, "u1")
	order := placeOrder(t, st, user, domain.MethodRazorpay)
	rec := &recorder{}
	svc := services.NewPaymentService(st, rec, nil, secret)

	sum, err := svc.VerifyOnline(ctx, user, services.VerifyInput{
		OrderID: order.ID, PaymentID: "pay_ABC", Signature: svc.Sign(order.ID, "pay_ABC"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, sum.PaymentStatus)
	assert.Equal(t, domain.StatusConfirmed, sum.Status)

	o, err := st.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "pay_ABC", o.PaymentID)

	pays, err := st.Payments.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, domain.SettlementCaptured, pays[0].Status)
	assert.True(t, pays[0].Amount.Equal(o.TotalAmount))

	notes, err := st.Notifications.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.ElementsMatch(t,
		[]domain.NotificationType{domain.NotifyNewOrder, domain.NotifyPaymentReceived},
		[]domain.NotificationType{notes[0].Type, notes[1].Type})

	evs := rec.all()
	require.Len(t, evs, 1)
	assert.Equal(t, relay.KindPaymentReceived, evs[0].Kind)

	// a second verification is a conflict
	_, err = svc.VerifyOnline(ctx, user, services.VerifyInput{
		OrderID: order.ID, PaymentID: "pay_ABC", Signature: svc.Sign(order.ID, "pay_ABC"),
	})
	assert.ErrorIs(t, err, services.ErrAlreadyProcessed)
}

func TestVerifyOnlineRejectsTamperedSignature(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	user := addUser(t, st, "u1")
	order := placeOrder(t, st, user, domain.MethodUPI)
	rec := &recorder{}
	svc := services.NewPaymentService(st, rec, nil, secret)

	sig := []byte(svc.Sign(order.ID, "pay_1"))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	_, err := svc.VerifyOnline(ctx, user, services.VerifyInput{OrderID: order.ID, PaymentID: "pay_1", Signature: string(sig)})
	assert.ErrorIs(t, err, services.ErrInvalidSignature)

	// signature for a different payment id
	_, err = svc.VerifyOnline(ctx, user, services.VerifyInput{OrderID: order.ID, PaymentID: "pay_2", Signature: svc.Sign(order.ID, "pay_1")})
	assert.ErrorIs(t, err, services.ErrInvalidSignature)

	o, err := st.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
	pays, err := st.Payments.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, pays)
	assert.Empty(t, rec.all())
}

func TestVerifyOnlineOwnershipAndMethod(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	alice := addUser(t, st, "alice")
	bob := addUser(t, st, "bob")
	svc := services.NewPaymentService(st, nil, nil, secret)

	online := placeOrder(t, st, alice, domain.MethodRazorpay)
	_, err := svc.VerifyOnline(ctx, bob, services.VerifyInput{
		OrderID: online.ID, PaymentID: "p", Signature: svc.Sign(online.ID, "p"),
	})
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	cod := placeOrder(t, st, alice, domain.MethodCOD)
	_, err = svc.VerifyOnline(ctx, alice, services.VerifyInput{
		OrderID: cod.ID, PaymentID: "p", Signature: svc.Sign(cod.ID, "p"),
	})
	assert.ErrorIs(t, err, services.ErrPaymentMethodMismatch)

	_, err = svc.VerifyOnline(ctx, admin, services.VerifyInput{
		OrderID: online.ID, PaymentID: "p", Signature: svc.Sign(online.ID, "p"),
	})
	assert.NoError(t, err)
}

func TestConfirmCOD(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	user := addUser(t, st, "u1")
	rec := &recorder{}
	svc := services.NewPaymentService(st, rec, nil, secret)

	online := placeOrder(t, st, user, domain.MethodRazorpay)
	_, err := svc.ConfirmCOD(ctx, user, online.ID)
	assert.ErrorIs(t, err, services.ErrPaymentMethodMismatch)

	order := placeOrder(t, st, user, domain.MethodCOD)
	sum, err := svc.ConfirmCOD(ctx, user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, sum.Status)
	assert.Equal(t, domain.PaymentPending, sum.PaymentStatus)

	pays, err := st.Payments.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, "cod", pays[0].Gateway)
	assert.Equal(t, domain.SettlementPending, pays[0].Status)

	notes, err := st.Notifications.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.ElementsMatch(t, []string{"New Order Received", "New COD Order"}, []string{notes[0].Title, notes[1].Title})

	evs := rec.all()
	require.Len(t, evs, 1)
	assert.Equal(t, relay.KindNewCODOrder, evs[0].Kind)

	_, err = svc.ConfirmCOD(ctx, user, order.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyProcessed)

	_, err = svc.ConfirmCOD(ctx, user, "missing")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
