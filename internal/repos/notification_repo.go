package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"glowcandles/internal/domain"
)

// NotificationRepo stores the admin notification feed. Rows are only ever
// inserted or flagged read.
type NotificationRepo struct{ q sqlx.ExtContext }

func NewNotificationRepo(q sqlx.ExtContext) *NotificationRepo { return &NotificationRepo{q: q} }

const notificationCols = `id, type, title, message, order_id, is_read, created_at`

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt == "" {
		n.CreatedAt = domain.Timestamp(time.Now())
	}
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO admin_notifications(`+notificationCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		n.ID, n.Type, n.Title, n.Message, n.OrderID, n.IsRead, n.CreatedAt)
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	err := sqlx.GetContext(ctx, r.q, &n, r.q.Rebind(`SELECT `+notificationCols+` FROM admin_notifications WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *NotificationRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT `+notificationCols+` FROM admin_notifications
		WHERE order_id = ? ORDER BY created_at`), orderID)
	return out, err
}

func (r *NotificationRepo) Page(ctx context.Context, page, size int) ([]domain.Notification, error) {
	limit, offset := pageArgs(page, size)
	out := []domain.Notification{}
	err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(`
		SELECT `+notificationCols+` FROM admin_notifications
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`), limit, offset)
	return out, err
}

func (r *NotificationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM admin_notifications`)
	return n, err
}

func (r *NotificationRepo) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM admin_notifications WHERE is_read = FALSE`)
	return n, err
}

// MarkRead sets the read flag. Marking an already-read row succeeds.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE admin_notifications SET is_read = TRUE WHERE id = ?`), id)
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
