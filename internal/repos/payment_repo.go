package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"glowcandles/internal/domain"
)

type PaymentRepo struct{ q sqlx.ExtContext }

func NewPaymentRepo(q sqlx.ExtContext) *PaymentRepo { return &PaymentRepo{q: q} }

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	if p.CreatedAt == "" {
		p.CreatedAt = domain.Timestamp(time.Now())
	}
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO payments(id, order_id, payment_id, gateway, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.OrderID, p.PaymentID, p.Gateway, p.Amount, p.Status, p.CreatedAt)
	return err
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	out := []domain.Payment{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT id, order_id, payment_id, gateway, amount, status, created_at
		FROM payments WHERE order_id = ? ORDER BY created_at`), orderID)
	return out, err
}
