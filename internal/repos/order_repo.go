package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"glowcandles/internal/domain"
)

type OrderRepo struct{ q sqlx.ExtContext }

func NewOrderRepo(q sqlx.ExtContext) *OrderRepo { return &OrderRepo{q: q} }

const orderCols = `id, order_number, user_id, subtotal, tax_amount, shipping_amount, total_amount,
	status, payment_status, payment_method, payment_id, created_at, updated_at`

// OrderRow is an order header with the customer taken from its shipping
// address, used by list views.
type OrderRow struct {
	domain.Order
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerEmail string `db:"customer_email" json:"customerEmail"`
	ItemCount     int    `db:"item_count" json:"itemCount"`
}

const orderRowSelect = `
	SELECT o.id, o.order_number, o.user_id, o.subtotal, o.tax_amount, o.shipping_amount, o.total_amount,
	       o.status, o.payment_status, o.payment_method, o.payment_id, o.created_at, o.updated_at,
	       COALESCE(s.first_name || ' ' || s.last_name, '') AS customer_name,
	       COALESCE(s.email, '') AS customer_email,
	       (SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id) AS item_count
	FROM orders o
	LEFT JOIN shipping_addresses s ON s.order_id = o.id`

// Create inserts the header. ErrDuplicate means the order number collided.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	now := domain.Timestamp(time.Now())
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO orders(`+orderCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.OrderNumber, o.UserID, o.Subtotal, o.TaxAmount, o.ShippingAmount, o.TotalAmount,
		o.Status, o.PaymentStatus, o.PaymentMethod, o.PaymentID, o.CreatedAt, o.UpdatedAt)
	if IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *OrderRepo) AddItem(ctx context.Context, it *domain.OrderItem) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO order_items(id, order_id, product_id, product_name, product_image, price, quantity, total_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		it.ID, it.OrderID, it.ProductID, it.ProductName, it.ProductImage, it.Price, it.Quantity, it.TotalPrice)
	return err
}

func (r *OrderRepo) AddShipping(ctx context.Context, a *domain.ShippingAddress) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO shipping_addresses(id, order_id, first_name, last_name, email, phone, street, city, state, pincode, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.OrderID, a.FirstName, a.LastName, a.Email, a.Phone, a.Street, a.City, a.State, a.Pincode, a.Country)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.q, &o, r.q.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT id, order_id, product_id, product_name, product_image, price, quantity, total_price
		FROM order_items WHERE order_id = ? ORDER BY product_name`), orderID)
	return out, err
}

// Shipping returns the address of the order, nil when there is none.
func (r *OrderRepo) Shipping(ctx context.Context, orderID string) (*domain.ShippingAddress, error) {
	var a domain.ShippingAddress
	err := sqlx.GetContext(ctx, r.q, &a, r.q.Rebind(`
		SELECT id, order_id, first_name, last_name, email, phone, street, city, state, pincode, country
		FROM shipping_addresses WHERE order_id = ?`), orderID)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]OrderRow, error) {
	out := []OrderRow{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(orderRowSelect+`
		WHERE o.user_id = ?
		ORDER BY o.created_at DESC`), userID)
	return out, err
}

func (r *OrderRepo) Page(ctx context.Context, page, size int) ([]OrderRow, error) {
	limit, offset := pageArgs(page, size)
	out := []OrderRow{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(orderRowSelect+`
		ORDER BY o.created_at DESC
		LIMIT ? OFFSET ?`), limit, offset)
	return out, err
}

func (r *OrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

// CountSince counts orders created at or after the timestamp.
func (r *OrderRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, r.q.Rebind(`SELECT COUNT(*) FROM orders WHERE created_at >= ?`), domain.Timestamp(since))
	return n, err
}

func (r *OrderRepo) CountByStatus(ctx context.Context, status domain.OrderStatus) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, r.q.Rebind(`SELECT COUNT(*) FROM orders WHERE status = ?`), status)
	return n, err
}

// Revenue sums order totals whose payment has not failed.
func (r *OrderRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := sqlx.GetContext(ctx, r.q, &sum, r.q.Rebind(`
		SELECT SUM(total_amount) FROM orders WHERE payment_status <> ?`), domain.PaymentFailed)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return r.exec1(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, domain.Timestamp(time.Now()), id)
}

func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error {
	return r.exec1(ctx, `UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?`,
		ps, domain.Timestamp(time.Now()), id)
}

// MarkPaid records a verified gateway payment on the order.
func (r *OrderRepo) MarkPaid(ctx context.Context, id, paymentID string) error {
	return r.exec1(ctx, `
		UPDATE orders SET payment_status = ?, status = ?, payment_id = ?, updated_at = ? WHERE id = ?`,
		domain.PaymentPaid, domain.StatusConfirmed, paymentID, domain.Timestamp(time.Now()), id)
}

func (r *OrderRepo) exec1(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
