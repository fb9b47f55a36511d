package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"glowcandles/internal/domain"
)

type UserRepo struct{ q sqlx.ExtContext }

func NewUserRepo(q sqlx.ExtContext) *UserRepo { return &UserRepo{q: q} }

const userCols = `id, email, name, phone, password_hash, role, created_at`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, r.q.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, r.q.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Create inserts u; ErrDuplicate means the email is taken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt == "" {
		u.CreatedAt = domain.Timestamp(time.Now())
	}
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO users(`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Name, u.Phone, u.Hash, u.Role, u.CreatedAt)
	if IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// SetCredentials updates the hash and role of an existing account.
func (r *UserRepo) SetCredentials(ctx context.Context, id, hash, role string) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE users SET password_hash = ?, role = ? WHERE id = ?`), hash, role, id)
	return err
}
