package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"glowcandles/internal/domain"
)

// CartRepo persists the server-side cart of signed-in users. Guest carts
// never reach the server.
type CartRepo struct{ q sqlx.ExtContext }

func NewCartRepo(q sqlx.ExtContext) *CartRepo { return &CartRepo{q: q} }

// Lines joins the cart with the live catalog rows.
func (r *CartRepo) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT c.product_id, p.name, p.price, p.image_url, c.quantity, p.stock_quantity, p.is_active
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.created_at, p.name`), userID)
	return out, err
}

// Quantity returns the quantity already in the cart, 0 when absent.
func (r *CartRepo) Quantity(ctx context.Context, userID, productID string) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.q, &qty, r.q.Rebind(`
		SELECT quantity FROM cart WHERE user_id = ? AND product_id = ?`), userID, productID)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

// Set stores an absolute quantity, creating the line if needed.
func (r *CartRepo) Set(ctx context.Context, userID, productID string, qty int) error {
	now := domain.Timestamp(time.Now())
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO cart(user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET quantity = excluded.quantity, updated_at = excluded.updated_at`),
		userID, productID, qty, now, now)
	return err
}

// Remove deletes one line; ErrNotFound when it was not in the cart.
func (r *CartRepo) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM cart WHERE user_id = ? AND product_id = ?`), userID, productID)
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

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM cart WHERE user_id = ?`), userID)
	return err
}
