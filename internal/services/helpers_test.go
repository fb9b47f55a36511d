package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"glowcandles/internal/domain"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
	"glowcandles/internal/services"
)

type recorder struct {
	mu     sync.Mutex
	events []relay.Event
}

func (r *recorder) Publish(_ context.Context, ev relay.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []relay.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]relay.Event(nil), r.events...)
}

func newStore(t *testing.T) *repos.Store {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewStore(db)
}

func addProduct(t *testing.T, st *repos.Store, id, price string, stock int) {
	t.Helper()
	require.NoError(t, st.Products.Create(context.Background(), &domain.Product{
		ID: id, Name: "Test " + id, Price: decimal.RequireFromString(price),
		Category: "test", StockQuantity: stock, IsActive: true,
	}))
}

func addUser(t *testing.T, st *repos.Store, id string) domain.Principal {
	t.Helper()
	require.NoError(t, st.Users.Create(context.Background(), &domain.User{
		ID: id, Email: id + "@example.in", Name: "User " + id, Hash: "x", Role: domain.RoleUser,
	}))
	return domain.Principal{UserID: id, Email: id + "@example.in", Role: domain.RoleUser}
}

func shipping() services.ShippingInput {
	return services.ShippingInput{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.in", Phone: "9876543210",
		Street: "12 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001",
	}
}

func orderCount(t *testing.T, st *repos.Store) int {
	t.Helper()
	n, err := st.Orders.Count(context.Background())
	require.NoError(t, err)
	return n
}

var admin = domain.Principal{UserID: "admin-1", Email: "admin@glowcandles.in", Role: domain.RoleAdmin}
