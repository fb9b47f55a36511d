package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate key")
)

// Store groups the repositories over one query executor, either the pool
// or a single transaction.
type Store struct {
	db *sqlx.DB // nil when the store is bound to a transaction

	Products      *ProductRepo
	Users         *UserRepo
	Carts         *CartRepo
	Orders        *OrderRepo
	Payments      *PaymentRepo
	Notifications *NotificationRepo
}

func NewStore(db *sqlx.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(q sqlx.ExtContext) *Store {
	return &Store{
		Products:      NewProductRepo(q),
		Users:         NewUserRepo(q),
		Carts:         NewCartRepo(q),
		Orders:        NewOrderRepo(q),
		Payments:      NewPaymentRepo(q),
		Notifications: NewNotificationRepo(q),
	}
}

// WithTx runs fn against a transaction-bound Store. A nil return commits,
// anything else (including a panic) rolls back. Calling WithTx on a store
// that is already transactional reuses the open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(newStore(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// IsUniqueViolation recognises unique-constraint failures from both drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// modernc.org/sqlite errors expose the extended result code.
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case 2067, 1555: // SQLITE_CONSTRAINT_UNIQUE, SQLITE_CONSTRAINT_PRIMARYKEY
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// pageArgs turns a 1-based page into LIMIT/OFFSET values.
func pageArgs(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}
	return size, (page - 1) * size
}
