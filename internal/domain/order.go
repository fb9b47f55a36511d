package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	StatusPending: true, StatusConfirmed: true, StatusProcessing: true,
	StatusShipped: true, StatusDelivered: true, StatusCancelled: true,
}

func (s OrderStatus) Valid() bool { return orderStatuses[s] }

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

type PaymentMethod string

const (
	MethodRazorpay PaymentMethod = "razorpay"
	MethodUPI      PaymentMethod = "upi"
	MethodCOD      PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodRazorpay || m == MethodUPI || m == MethodCOD
}

// Online is true for methods settled through the gateway.
func (m PaymentMethod) Online() bool { return m == MethodRazorpay || m == MethodUPI }

// Settlement states of a payment record.
const (
	SettlementCaptured = "captured"
	SettlementPending  = "pending"
)

const DefaultCountry = "India"

type Order struct {
	ID             string          `db:"id" json:"id"`
	OrderNumber    string          `db:"order_number" json:"orderNumber"`
	UserID         *string         `db:"user_id" json:"userId,omitempty"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	ShippingAmount decimal.Decimal `db:"shipping_amount" json:"shippingAmount"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status         OrderStatus     `db:"status" json:"status"`
	PaymentStatus  PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	PaymentMethod  PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PaymentID      string          `db:"payment_id" json:"paymentId,omitempty"`
	CreatedAt      string          `db:"created_at" json:"createdAt"`
	UpdatedAt      string          `db:"updated_at" json:"updatedAt"`
}

// OrderItem is a snapshot of the product at checkout time.
type OrderItem struct {
	ID           string          `db:"id" json:"id"`
	OrderID      string          `db:"order_id" json:"orderId"`
	ProductID    string          `db:"product_id" json:"productId"`
	ProductName  string          `db:"product_name" json:"productName"`
	ProductImage string          `db:"product_image" json:"productImage"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"totalPrice"`
}

type ShippingAddress struct {
	ID        string `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"orderId"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
	Street    string `db:"street" json:"street"`
	City      string `db:"city" json:"city"`
	State     string `db:"state" json:"state"`
	Pincode   string `db:"pincode" json:"pincode"`
	Country   string `db:"country" json:"country"`
}

func (a ShippingAddress) FullName() string { return a.FirstName + " " + a.LastName }

type Payment struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"orderId"`
	PaymentID string          `db:"payment_id" json:"paymentId"`
	Gateway   string          `db:"gateway" json:"gateway"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Status    string          `db:"status" json:"status"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
}

// OrderDetail is the full order aggregate.
type OrderDetail struct {
	Order
	Items    []OrderItem      `json:"items"`
	Shipping *ShippingAddress `json:"shippingAddress,omitempty"`
	Payments []Payment        `json:"payments,omitempty"`
}

// OrderSummary is what checkout returns to the caller.
type OrderSummary struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"orderNumber"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	ShippingAmount decimal.Decimal `json:"shippingAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
}

func (o Order) Summary() OrderSummary {
	return OrderSummary{
		ID: o.ID, OrderNumber: o.OrderNumber,
		Subtotal: o.Subtotal, TaxAmount: o.TaxAmount, ShippingAmount: o.ShippingAmount, TotalAmount: o.TotalAmount,
		Status: o.Status, PaymentStatus: o.PaymentStatus, PaymentMethod: o.PaymentMethod,
	}
}

type NotificationType string

const (
	NotifyNewOrder        NotificationType = "new_order"
	NotifyPaymentReceived NotificationType = "payment_received"
)

type Notification struct {
	ID        string           `db:"id" json:"id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	OrderID   *string          `db:"order_id" json:"orderId,omitempty"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	CreatedAt string           `db:"created_at" json:"createdAt"`
}
