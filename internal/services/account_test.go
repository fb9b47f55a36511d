package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowcandles/internal/domain"
	"glowcandles/internal/services"
	"glowcandles/internal/token"
)

func TestRegisterLoginAndMe(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	svc := services.NewAuthService(st, token.NewIssuer("s3cret", time.Hour), nil)

	sess, err := svc.Register(ctx, services.RegisterInput{
		Name: "Asha Rao", Email: " asha@example.in ", Password: "Candles@123", Phone: "+91 9876543210",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, domain.RoleUser, sess.User.Role)

	_, err = svc.Register(ctx, services.RegisterInput{Name: "Dup", Email: "ASHA@example.in", Password: "Candles@123"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	_, err = svc.Register(ctx, services.RegisterInput{Name: "X", Email: "bad", Password: "short"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Login(ctx, "asha@example.in", "wrong-password")
	assert.ErrorIs(t, err, services.ErrBadCredentials)
	_, err = svc.Login(ctx, "nobody@example.in", "Candles@123")
	assert.ErrorIs(t, err, services.ErrBadCredentials)

	sess, err = svc.Login(ctx, "asha@example.in", "Candles@123")
	require.NoError(t, err)
	p, err := svc.Authenticate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, p.UserID)

	me, err := svc.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", me.Name)

	// a normal account cannot use the admin login
	_, err = svc.AdminLogin(ctx, "asha@example.in", "Candles@123")
	assert.ErrorIs(t, err, services.ErrBadCredentials)
}

func TestEnsureAdminSeedsAndResets(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	svc := services.NewAuthService(st, token.NewIssuer("s3cret", time.Hour), nil)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@glowcandles.in", "Admin@123"))
	sess, err := svc.AdminLogin(ctx, "admin@glowcandles.in", "Admin@123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@glowcandles.in", "Changed@456"))
	_, err = svc.AdminLogin(ctx, "admin@glowcandles.in", "Admin@123")
	assert.ErrorIs(t, err, services.ErrBadCredentials)
	_, err = svc.AdminLogin(ctx, "admin@glowcandles.in", "Changed@456")
	assert.NoError(t, err)
}

type staticVerifier struct{ user *domain.User }

func (v staticVerifier) Verify(context.Context, string, string) (*domain.User, error) {
	if v.user == nil {
		return nil, services.ErrBadCredentials
	}
	return v.user, nil
}

func TestAdminLoginUsesPluggableVerifier(t *testing.T) {
	svc := services.NewAuthService(newStore(t), token.NewIssuer("s3cret", time.Hour), nil)
	svc.Verifier = staticVerifier{user: &domain.User{ID: "ops", Email: "ops@example.in", Role: domain.RoleAdmin}}

	sess, err := svc.AdminLogin(context.Background(), "anything", "anything")
	require.NoError(t, err)
	assert.Equal(t, "ops", sess.User.ID)
}

func TestCartAccumulatesWithinStock(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	user := addUser(t, st, "u1")
	addProduct(t, st, "small", "120.50", 3)
	svc := services.NewCartService(st)

	cart, err := svc.Add(ctx, user, "small", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, "241.00", cart.Total.StringFixed(2))

	_, err = svc.Add(ctx, user, "small", 2)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	cart, err = svc.Add(ctx, user, "candle-rose", 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "540.00", cart.Total.StringFixed(2))

	cart, err = svc.Update(ctx, user, "small", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount)

	_, err = svc.Update(ctx, user, "candle-vanilla", 1)
	assert.ErrorIs(t, err, services.ErrCartItemNotFound)
	_, err = svc.Add(ctx, user, "small", 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	_, err = svc.Add(ctx, user, "missing", 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	cart, err = svc.Remove(ctx, user, "small")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	_, err = svc.Remove(ctx, user, "small")
	assert.ErrorIs(t, err, services.ErrCartItemNotFound)

	require.NoError(t, svc.Clear(ctx, user))
	cart, err = svc.View(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestCatalogAvailability(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	svc := services.NewCatalogService(st.Products)

	cases := []struct {
		stock int
		want  string
	}{{10, "IN_STOCK"}, {5, "IN_STOCK"}, {4, "LOW_STOCK"}, {1, "LOW_STOCK"}, {0, "OUT_OF_STOCK"}}
	for _, c := range cases {
		require.NoError(t, st.Products.SetStock(ctx, "candle-rose", c.stock))
		a, err := svc.CheckAvailability(ctx, "candle-rose")
		require.NoError(t, err)
		assert.Equal(t, c.want, a.Status, "stock %d", c.stock)
		assert.Equal(t, c.stock, a.Qty)
	}

	_, err := svc.CheckAvailability(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	romantic, err := svc.List(ctx, "", "romantic")
	require.NoError(t, err)
	require.Len(t, romantic, 1)
	assert.Equal(t, "candle-rose", romantic[0].ID)

	found, err := svc.List(ctx, "lavender", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
}
