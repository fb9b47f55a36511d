package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindNewOrder        Kind = "new_order"
	KindPaymentReceived Kind = "payment_received"
	KindNewCODOrder     Kind = "new_cod_order"
)

// Event is a live order lifecycle notice for the admin room.
type Event struct {
	Kind         Kind            `json:"kind"`
	OrderID      string          `json:"orderId"`
	OrderNumber  string          `json:"orderNumber"`
	Amount       decimal.Decimal `json:"amount"`
	CustomerName string          `json:"customerName,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (e Event) JSON() []byte {
	b, _ := json.Marshal(e)
	return b
}

// Publisher is the outbound event port used after an order transaction
// commits. Implementations must not block the caller and never report
// delivery failures back.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
