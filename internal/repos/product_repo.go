package repos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"glowcandles/internal/domain"
)

type ProductRepo struct{ q sqlx.ExtContext }

func NewProductRepo(q sqlx.ExtContext) *ProductRepo { return &ProductRepo{q: q} }

const productCols = `id, name, description, price, image_url, category, stock_quantity, is_active, created_at, updated_at`

type ProductFilter struct {
	Query    string // case-insensitive match on name or description
	Category string
}

// ListActive returns active products, newest first.
func (r *ProductRepo) ListActive(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := `is_active = TRUE`
	args := []any{}
	if f.Query != "" {
		q := "%" + strings.ToLower(f.Query) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, q, q)
	}
	if f.Category != "" {
		where += ` AND LOWER(category) = LOWER(?)`
		args = append(args, f.Category)
	}
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE `+where+`
		ORDER BY created_at DESC, name`), args...)
	return out, err
}

// FindActive returns the live row for id, or ErrNotFound when the product is
// unknown or deactivated.
func (r *ProductRepo) FindActive(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, r.q.Rebind(`
		SELECT `+productCols+` FROM products WHERE id = ? AND is_active = TRUE`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindActiveByName matches the exact name, case-insensitively.
func (r *ProductRepo) FindActiveByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, r.q.Rebind(`
		SELECT `+productCols+` FROM products
		WHERE LOWER(name) = LOWER(?) AND is_active = TRUE
		ORDER BY created_at
		LIMIT 1`), strings.TrimSpace(name))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Get returns the product regardless of its active flag.
func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, r.q.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	now := domain.Timestamp(time.Now())
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.StockQuantity, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// DecrementStock subtracts by units only if that many are on hand. The
// guard lives in the UPDATE so concurrent checkouts cannot both take the
// last unit.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, by int) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?, updated_at = ?
		WHERE id = ? AND stock_quantity >= ?`),
		by, domain.Timestamp(time.Now()), id, by)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// SetStock overwrites the on-hand quantity.
func (r *ProductRepo) SetStock(ctx context.Context, id string, qty int) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE products SET stock_quantity = ?, updated_at = ? WHERE id = ?`),
		qty, domain.Timestamp(time.Now()), id)
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

// Page lists every product, active or not, for the admin surface.
func (r *ProductRepo) Page(ctx context.Context, page, size int) ([]domain.Product, error) {
	limit, offset := pageArgs(page, size)
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT `+productCols+` FROM products
		ORDER BY created_at DESC, name
		LIMIT ? OFFSET ?`), limit, offset)
	return out, err
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM products`)
	return n, err
}
