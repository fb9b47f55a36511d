package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"glowcandles/internal/domain"
	"glowcandles/internal/metrics"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
)

// order numbers are random display labels; a collision just retries the
// whole transaction with a fresh one.
const orderNumberAttempts = 3

type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"min=1,max=100"`
}

type ShippingInput struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone_in"`
	Street    string `json:"street" validate:"required,max=200"`
	Address   string `json:"address,omitempty" validate:"-"`
	City      string `json:"city" validate:"required,max=60"`
	State     string `json:"state" validate:"required,max=60"`
	Pincode   string `json:"pincode" validate:"required,pincode"`
	Country   string `json:"country" validate:"omitempty,max=60"`
}

func (s *ShippingInput) normalize() {
	if strings.TrimSpace(s.Street) == "" {
		s.Street = s.Address
	}
	for _, f := range []*string{&s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Street, &s.City, &s.State, &s.Pincode, &s.Country} {
		*f = strings.TrimSpace(*f)
	}
	if s.Country == "" {
		s.Country = domain.DefaultCountry
	}
}

type PaymentInput struct {
	Method    domain.PaymentMethod `json:"method" validate:"required,paymethod"`
	PaymentID string               `json:"paymentId,omitempty" validate:"max=100"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"dive"`
	ShippingAddress ShippingInput    `json:"shippingAddress"`
	Payment         PaymentInput     `json:"payment"`
}

// Amount accepts a JSON number or a loosely formatted string ("₹299").
type Amount decimal.Decimal

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount(decimal.Zero)
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(ParsePrice(s))
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("invalid amount %s", b)
	}
	*a = Amount(d.Round(2))
	return nil
}

func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

// GuestItemInput is a cart line as held by the browser. ID may be a catalog
// id or empty; Name, Price and Image describe the product as the client saw it.
type GuestItemInput struct {
	ID       string `json:"id" validate:"max=64"`
	Name     string `json:"name" validate:"max=200"`
	Price    Amount `json:"price"`
	Image    string `json:"image" validate:"max=500"`
	Quantity int    `json:"quantity" validate:"min=0,max=100"`
}

type GuestOrderInput struct {
	Items           []GuestItemInput `json:"items" validate:"dive"`
	ShippingAddress ShippingInput    `json:"shippingAddress"`
	Payment         PaymentInput     `json:"payment"`
}

type OrderService struct {
	Store  *repos.Store
	Events relay.Publisher
	Log    *zap.Logger

	// AllowAdHoc lets guest checkout create catalog rows for products
	// it cannot match.
	AllowAdHoc bool

	now func() time.Time
}

func NewOrderService(store *repos.Store, events relay.Publisher, log *zap.Logger, allowAdHoc bool) *OrderService {
	if events == nil {
		events = relay.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{Store: store, Events: events, Log: log, AllowAdHoc: allowAdHoc, now: time.Now}
}

// line is a resolved order line priced from the catalog.
type line struct {
	product domain.Product
	qty     int
}

// Create places an order for the caller from the given lines. Prices come
// from the catalog, stock is decremented and the caller's cart is cleared,
// all in one transaction.
func (s *OrderService) Create(ctx context.Context, p domain.Principal, in CreateOrderInput) (*domain.OrderSummary, error) {
	sum, err := s.create(ctx, p, in)
	metrics.RecordOrderOperation("create", err == nil)
	return sum, err
}

func (s *OrderService) create(ctx context.Context, p domain.Principal, in CreateOrderInput) (*domain.OrderSummary, error) {
	if len(in.Items) == 0 {
		return nil, invalid(ErrEmptyItems, "items", "must contain at least 1 item(s)")
	}
	in.ShippingAddress.normalize()
	if err := check(in); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:         &p.UserID,
		ShippingAmount: ShippingFee,
		PaymentMethod:  in.Payment.Method,
		PaymentID:      strings.TrimSpace(in.Payment.PaymentID),
		Status:         domain.StatusConfirmed,
		PaymentStatus:  domain.PaymentPending,
	}
	if in.Payment.Method == domain.MethodCOD {
		order.Status = domain.StatusPending
	}

	err := s.withOrderNumber(ctx, order, func(tx *repos.Store) error {
		lines := make([]line, 0, len(in.Items))
		for _, it := range in.Items {
			prod, err := tx.Products.FindActive(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, repos.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
				}
				return err
			}
			if prod.StockQuantity < it.Quantity {
				return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, prod.StockQuantity, prod.Name)
			}
			lines = append(lines, line{product: *prod, qty: it.Quantity})
		}

		if err := s.persist(ctx, tx, order, lines, in.ShippingAddress); err != nil {
			return err
		}
		for _, l := range lines {
			if err := tx.Products.DecrementStock(ctx, l.product.ID, l.qty); err != nil {
				if errors.Is(err, repos.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, l.product.Name)
				}
				return err
			}
		}
		if err := tx.Carts.Clear(ctx, p.UserID); err != nil {
			return err
		}
		return tx.Notifications.Create(ctx, &domain.Notification{
			ID:      uuid.NewString(),
			Type:    domain.NotifyNewOrder,
			Title:   "New Order Received",
			Message: fmt.Sprintf("New order #%s has been placed by %s %s", order.OrderNumber, in.ShippingAddress.FirstName, in.ShippingAddress.LastName),
			OrderID: &order.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("order created",
		zap.String("order_number", order.OrderNumber), zap.String("user_id", p.UserID),
		zap.String("method", string(order.PaymentMethod)), zap.String("total", order.TotalAmount.StringFixed(2)))
	s.Events.Publish(ctx, relay.Event{
		Kind: relay.KindNewOrder, OrderID: order.ID, OrderNumber: order.OrderNumber,
		Amount: order.TotalAmount, CustomerName: in.ShippingAddress.FirstName + " " + in.ShippingAddress.LastName,
	})
	sum := order.Summary()
	return &sum, nil
}

// CreateGuest places an order without an account. Lines are matched to the
// catalog by id, then by exact name; unmatched lines become ad-hoc products
// priced by the client when AllowAdHoc is set. Guest orders do not touch
// stock. Online guest orders are recorded as paid immediately.
func (s *OrderService) CreateGuest(ctx context.Context, in GuestOrderInput) (*domain.OrderSummary, error) {
	sum, err := s.createGuest(ctx, in)
	metrics.RecordOrderOperation("create_guest", err == nil)
	return sum, err
}

func (s *OrderService) createGuest(ctx context.Context, in GuestOrderInput) (*domain.OrderSummary, error) {
	if len(in.Items) == 0 {
		return nil, invalid(ErrEmptyItems, "items", "must contain at least 1 item(s)")
	}
	in.ShippingAddress.normalize()
	for i := range in.Items {
		if in.Items[i].Quantity == 0 {
			in.Items[i].Quantity = 1
		}
	}
	if err := check(in); err != nil {
		return nil, err
	}

	cod := in.Payment.Method == domain.MethodCOD
	order := &domain.Order{
		ShippingAmount: ShippingFee,
		PaymentMethod:  in.Payment.Method,
		PaymentID:      strings.TrimSpace(in.Payment.PaymentID),
		Status:         domain.StatusConfirmed,
		PaymentStatus:  domain.PaymentPaid,
	}
	if cod {
		order.Status, order.PaymentStatus = domain.StatusPending, domain.PaymentPending
	}
	customer := in.ShippingAddress.FirstName + " " + in.ShippingAddress.LastName

	err := s.withOrderNumber(ctx, order, func(tx *repos.Store) error {
		lines := make([]line, 0, len(in.Items))
		for i, it := range in.Items {
			prod, err := s.resolveGuestItem(ctx, tx, i, it)
			if err != nil {
				return err
			}
			lines = append(lines, line{product: *prod, qty: it.Quantity})
		}
		if err := s.persist(ctx, tx, order, lines, in.ShippingAddress); err != nil {
			return err
		}
		n := &domain.Notification{ID: uuid.NewString(), OrderID: &order.ID}
		if cod {
			n.Type, n.Title = domain.NotifyNewOrder, "New COD Order"
			n.Message = fmt.Sprintf("New COD order #%s - ₹%s", order.OrderNumber, order.TotalAmount.StringFixed(2))
		} else {
			n.Type, n.Title = domain.NotifyPaymentReceived, "Payment Received"
			n.Message = fmt.Sprintf("Payment received for order #%s - ₹%s", order.OrderNumber, order.TotalAmount.StringFixed(2))
		}
		return tx.Notifications.Create(ctx, n)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("guest order created",
		zap.String("order_number", order.OrderNumber), zap.String("method", string(order.PaymentMethod)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	kind := relay.KindPaymentReceived
	if cod {
		kind = relay.KindNewCODOrder
	}
	s.Events.Publish(ctx, relay.Event{
		Kind: kind, OrderID: order.ID, OrderNumber: order.OrderNumber,
		Amount: order.TotalAmount, CustomerName: customer,
	})
	sum := order.Summary()
	return &sum, nil
}

func (s *OrderService) resolveGuestItem(ctx context.Context, tx *repos.Store, i int, it GuestItemInput) (*domain.Product, error) {
	if id := strings.TrimSpace(it.ID); id != "" {
		prod, err := tx.Products.FindActive(ctx, id)
		if err == nil {
			return prod, nil
		}
		if !errors.Is(err, repos.ErrNotFound) {
			return nil, err
		}
	}
	name := strings.TrimSpace(it.Name)
	if name != "" {
		prod, err := tx.Products.FindActiveByName(ctx, name)
		if err == nil {
			return prod, nil
		}
		if !errors.Is(err, repos.ErrNotFound) {
			return nil, err
		}
	}
	if !s.AllowAdHoc || name == "" {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, firstNonEmpty(it.ID, it.Name))
	}
	price := it.Price.Decimal()
	if !price.IsPositive() {
		return nil, invalid(ErrValidation, fmt.Sprintf("items[%d].price", i), "must be greater than 0")
	}

	prod := &domain.Product{
		ID:            "guest-" + uuid.NewString(),
		Name:          name,
		Description:   "Created from guest checkout",
		Price:         price,
		ImageURL:      strings.TrimSpace(it.Image),
		Category:      "guest",
		StockQuantity: 1000,
		IsActive:      true,
	}
	if err := tx.Products.Create(ctx, prod); err != nil {
		return nil, fmt.Errorf("create ad-hoc product: %w", err)
	}
	s.Log.Warn("guest checkout created product from client data",
		zap.Bool("security", true), zap.String("product_id", prod.ID),
		zap.String("name", name), zap.String("price", price.StringFixed(2)))
	return prod, nil
}

// persist computes totals from the resolved lines and writes the header,
// the line snapshots and the shipping address.
func (s *OrderService) persist(ctx context.Context, tx *repos.Store, order *domain.Order, lines []line, ship ShippingInput) error {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(lineTotal(l.product.Price, l.qty))
	}
	t := ComputeTotals(subtotal)
	order.Subtotal, order.TaxAmount, order.ShippingAmount, order.TotalAmount = t.Subtotal, t.Tax, t.Shipping, t.Total

	if err := tx.Orders.Create(ctx, order); err != nil {
		return err
	}
	for _, l := range lines {
		if err := tx.Orders.AddItem(ctx, &domain.OrderItem{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			ProductID:    l.product.ID,
			ProductName:  l.product.Name,
			ProductImage: l.product.ImageURL,
			Price:        l.product.Price,
			Quantity:     l.qty,
			TotalPrice:   lineTotal(l.product.Price, l.qty),
		}); err != nil {
			return fmt.Errorf("add order item: %w", err)
		}
	}
	return tx.Orders.AddShipping(ctx, &domain.ShippingAddress{
		ID: uuid.NewString(), OrderID: order.ID,
		FirstName: ship.FirstName, LastName: ship.LastName, Email: ship.Email, Phone: ship.Phone,
		Street: ship.Street, City: ship.City, State: ship.State, Pincode: ship.Pincode, Country: ship.Country,
	})
}

// withOrderNumber runs fn in a transaction with a fresh id and order number,
// retrying on an order number collision.
func (s *OrderService) withOrderNumber(ctx context.Context, order *domain.Order, fn func(tx *repos.Store) error) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.ID = uuid.NewString()
		order.OrderNumber = NewOrderNumber(s.now())
		err = s.Store.WithTx(ctx, fn)
		if !errors.Is(err, repos.ErrDuplicate) {
			return err
		}
		s.Log.Warn("order number collision", zap.String("order_number", order.OrderNumber), zap.Int("attempt", attempt+1))
	}
	return err
}

// List returns the caller's orders, newest first.
func (s *OrderService) List(ctx context.Context, p domain.Principal) ([]repos.OrderRow, error) {
	return s.Store.Orders.ListByUser(ctx, p.UserID)
}

// Get returns the full order. Orders owned by someone else look missing.
func (s *OrderService) Get(ctx context.Context, p domain.Principal, id string) (*domain.OrderDetail, error) {
	o, err := s.Store.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !p.Owns(o.UserID) {
		return nil, ErrOrderNotFound
	}
	return loadDetail(ctx, s.Store, o)
}

func loadDetail(ctx context.Context, st *repos.Store, o *domain.Order) (*domain.OrderDetail, error) {
	items, err := st.Orders.Items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	ship, err := st.Orders.Shipping(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	pays, err := st.Payments.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &domain.OrderDetail{Order: *o, Items: items, Shipping: ship, Payments: pays}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
