package repos_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowcandles/internal/domain"
	"glowcandles/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDBSeedsCatalogOnce(t *testing.T) {
	db := memdb(t)
	store := repos.NewStore(db)
	ctx := context.Background()

	n, err := store.Products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	p, err := store.Products.FindActive(ctx, "candle-rose")
	require.NoError(t, err)
	assert.Equal(t, "Rose Candle", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(299)))
	assert.True(t, p.IsActive)
}

func TestDecrementStockGuardsNegative(t *testing.T) {
	store := repos.NewStore(memdb(t))
	ctx := context.Background()

	require.NoError(t, store.Products.SetStock(ctx, "candle-vanilla", 2))
	require.NoError(t, store.Products.DecrementStock(ctx, "candle-vanilla", 2))

	err := store.Products.DecrementStock(ctx, "candle-vanilla", 1)
	assert.ErrorIs(t, err, repos.ErrInsufficientStock)

	p, err := store.Products.Get(ctx, "candle-vanilla")
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)

	assert.ErrorIs(t, store.Products.SetStock(ctx, "nope", 3), repos.ErrNotFound)
}

func TestFindActiveHidesInactive(t *testing.T) {
	db := memdb(t)
	store := repos.NewStore(db)
	ctx := context.Background()

	_, err := db.Exec(`UPDATE products SET is_active = FALSE WHERE id = 'candle-pillar'`)
	require.NoError(t, err)

	_, err = store.Products.FindActive(ctx, "candle-pillar")
	assert.ErrorIs(t, err, repos.ErrNotFound)

	p, err := store.Products.FindActiveByName(ctx, "lavender candle")
	require.NoError(t, err)
	assert.Equal(t, "candle-lavender", p.ID)

	list, err := store.Products.ListActive(ctx, repos.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = store.Products.ListActive(ctx, repos.ProductFilter{Category: "SWEET"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "candle-vanilla", list[0].ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := repos.NewStore(memdb(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx *repos.Store) error {
		require.NoError(t, tx.Products.DecrementStock(ctx, "candle-rose", 5))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := store.Products.Get(ctx, "candle-rose")
	require.NoError(t, err)
	assert.Equal(t, 50, p.StockQuantity)

	require.NoError(t, store.WithTx(ctx, func(tx *repos.Store) error {
		return tx.Products.DecrementStock(ctx, "candle-rose", 5)
	}))
	p, err = store.Products.Get(ctx, "candle-rose")
	require.NoError(t, err)
	assert.Equal(t, 45, p.StockQuantity)
}

func TestUserEmailIsUnique(t *testing.T) {
	store := repos.NewStore(memdb(t))
	ctx := context.Background()

	u := &domain.User{ID: uuid.NewString(), Email: "asha@example.in", Name: "Asha", Hash: "x", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, u))

	dup := &domain.User{ID: uuid.NewString(), Email: "ASHA@example.in", Name: "Asha", Hash: "x", Role: domain.RoleUser}
	assert.ErrorIs(t, store.Users.Create(ctx, dup), repos.ErrDuplicate)

	got, err := store.Users.ByEmail(ctx, "asha@EXAMPLE.in")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestCartSetAndRemove(t *testing.T) {
	store := repos.NewStore(memdb(t))
	ctx := context.Background()
	u := &domain.User{ID: uuid.NewString(), Email: "c@example.in", Name: "C", Hash: "x", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, u))

	require.NoError(t, store.Carts.Set(ctx, u.ID, "candle-rose", 2))
	require.NoError(t, store.Carts.Set(ctx, u.ID, "candle-rose", 3))
	qty, err := store.Carts.Quantity(ctx, u.ID, "candle-rose")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	lines, err := store.Carts.Lines(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].LineTotal().Equal(decimal.NewFromInt(897)))

	require.NoError(t, store.Carts.Remove(ctx, u.ID, "candle-rose"))
	assert.ErrorIs(t, store.Carts.Remove(ctx, u.ID, "candle-rose"), repos.ErrNotFound)
}

func TestNotificationMarkReadIsIdempotent(t *testing.T) {
	store := repos.NewStore(memdb(t))
	ctx := context.Background()

	n := &domain.Notification{ID: uuid.NewString(), Type: domain.NotifyNewOrder, Title: "t", Message: "m"}
	require.NoError(t, store.Notifications.Create(ctx, n))

	unread, err := store.Notifications.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, store.Notifications.MarkRead(ctx, n.ID))
	require.NoError(t, store.Notifications.MarkRead(ctx, n.ID))

	got, err := store.Notifications.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	assert.ErrorIs(t, store.Notifications.MarkRead(ctx, "missing"), repos.ErrNotFound)
}

func TestOrderRevenueSkipsFailedPayments(t *testing.T) {
	store := repos.NewStore(memdb(t))
	ctx := context.Background()

	mk := func(num string, total int64, ps domain.PaymentStatus) {
		o := &domain.Order{
			ID: uuid.NewString(), OrderNumber: num,
			Subtotal: decimal.NewFromInt(total), TaxAmount: decimal.Zero, ShippingAmount: decimal.Zero,
			TotalAmount: decimal.NewFromInt(total),
			Status:      domain.StatusPending, PaymentStatus: ps, PaymentMethod: domain.MethodCOD,
		}
		require.NoError(t, store.Orders.Create(ctx, o))
	}
	mk("GC1", 100, domain.PaymentPaid)
	mk("GC2", 50, domain.PaymentPending)
	mk("GC3", 70, domain.PaymentFailed)

	rev, err := store.Orders.Revenue(ctx)
	require.NoError(t, err)
	assert.True(t, rev.Equal(decimal.NewFromInt(150)), rev.String())

	dup := &domain.Order{ID: uuid.NewString(), OrderNumber: "GC1", Status: domain.StatusPending,
		PaymentStatus: domain.PaymentPending, PaymentMethod: domain.MethodCOD}
	assert.ErrorIs(t, store.Orders.Create(ctx, dup), repos.ErrDuplicate)

	rows, err := store.Orders.Page(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	rows, err = store.Orders.Page(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	// an offset that would overflow lands past the end instead
	rows, err = store.Orders.Page(ctx, math.MaxInt, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
