package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowcandles/internal/http/handlers"
)

func TestAdminStockUpdateIsAudited(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	admin := ta.adminToken(t)

	code, res := ta.do(t, http.MethodPut, "/api/admin/products/candle-rose/stock", admin, map[string]any{"stockQuantity": 7})
	require.Equal(t, http.StatusOK, code, res.Message)
	assert.Equal(t, 7, decode[struct {
		StockQuantity int `json:"stockQuantity"`
	}](t, res.Data).StockQuantity)

	audits := ta.logs.FilterMessage("admin.products.stock").All()
	require.Len(t, audits, 1)
	ctx := audits[0].ContextMap()
	assert.Equal(t, true, ctx["audit"])
	assert.NotEmpty(t, ctx["user_id"])
	assert.Equal(t, map[string]any{"product_id": "candle-rose", "qty": 7}, ctx["fields"])

	code, res = ta.do(t, http.MethodGet, "/api/products/candle-rose/availability", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "IN_STOCK", decode[struct {
		Status string `json:"status"`
	}](t, res.Data).Status)

	code, _ = ta.do(t, http.MethodPut, "/api/admin/products/candle-missing/stock", admin, map[string]any{"stockQuantity": 1})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Len(t, ta.logs.FilterMessage("admin.products.stock").All(), 1)
}

func TestAdminStatusChangesAreAudited(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	user := ta.register(t, "audit@example.in")
	admin := ta.adminToken(t)

	code, res := ta.do(t, http.MethodPost, "/api/orders", user.Token, orderBody("cod", item("candle-rose", 1)))
	require.Equal(t, http.StatusCreated, code)
	id := decode[summary](t, res.Data).ID

	code, _ = ta.do(t, http.MethodPut, "/api/admin/orders/"+id+"/status", admin, map[string]any{"status": "processing"})
	require.Equal(t, http.StatusOK, code)
	code, _ = ta.do(t, http.MethodPut, "/api/admin/orders/"+id+"/payment-status", admin, map[string]any{"paymentStatus": "failed"})
	require.Equal(t, http.StatusOK, code)

	got := actions(ta.logs)
	assert.Contains(t, got, "order.create")
	assert.Contains(t, got, "admin.orders.status")
	assert.Contains(t, got, "admin.orders.payment_status")
}
