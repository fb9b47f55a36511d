package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"glowcandles/internal/config"
	"glowcandles/internal/http/handlers"
	applog "glowcandles/internal/log"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
)

const (
	adminEmail    = "admin@glowcandles.in"
	adminPassword = "Admin@123"
	testSecret    = "test-razorpay-secret"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	store *repos.Store
	hub   *relay.Hub
	deps  *handlers.Deps
	logs  *observer.ObservedLogs
	done  chan struct{}
}

func testConfig() config.Config {
	return config.Config{
		DBDriver:           repos.DriverSQLite,
		DBDSN:              ":memory:",
		JWTSecret:          "test-jwt-secret",
		JWTTTL:             time.Hour,
		PaymentSecret:      testSecret,
		AdminEmail:         adminEmail,
		AdminPassword:      adminPassword,
		GuestAdHocProducts: true,
		CORSOrigins:        "*",
	}
}

func newTestApp(t *testing.T, limits handlers.Limits) *testApp {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	applog.SetLogger(logger)

	hub := relay.NewHub()
	events := relay.NewDispatcher(hub, logger, 16)
	deps := handlers.NewDeps(db, cfg, events, hub, logger)
	require.NoError(t, deps.Auth.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword))

	done := make(chan struct{})
	deps.EventsHandler.Done = done
	deps.EventsHandler.Heartbeat = 50 * time.Millisecond

	t.Cleanup(func() {
		_ = events.Close(context.Background())
		_ = db.Close()
		applog.SetLogger(nil)
	})
	return &testApp{
		app:   handlers.NewApp(deps, cfg, limits),
		db:    db,
		store: repos.NewStore(db),
		hub:   hub,
		deps:  deps,
		logs:  logs,
		done:  done,
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out apiResponse
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func (ta *testApp) register(t *testing.T, email string) session {
	t.Helper()
	code, res := ta.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Asha Rao", "email": email, "password": "Candles@123", "phone": "9876543210",
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	return decode[session](t, res.Data)
}

func (ta *testApp) adminToken(t *testing.T) string {
	t.Helper()
	code, res := ta.do(t, http.MethodPost, "/api/admin/login", "", map[string]any{
		"email": adminEmail, "password": adminPassword,
	})
	require.Equal(t, http.StatusOK, code, res.Message)
	return decode[session](t, res.Data).Token
}

func shippingBody() map[string]any {
	return map[string]any{
		"firstName": "Asha", "lastName": "Rao", "email": "asha@example.in", "phone": "9876543210",
		"street": "12 MG Road", "city": "Bengaluru", "state": "Karnataka", "pincode": "560001",
	}
}

func orderBody(method string, items ...map[string]any) map[string]any {
	return map[string]any{
		"items":           items,
		"shippingAddress": shippingBody(),
		"payment":         map[string]any{"method": method},
	}
}

func item(id string, qty int) map[string]any {
	return map[string]any{"productId": id, "quantity": qty}
}

type summary struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"orderNumber"`
	Subtotal      string `json:"subtotal"`
	TaxAmount     string `json:"taxAmount"`
	TotalAmount   string `json:"totalAmount"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// actions lists the "action" field of every captured entry.
func actions(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.All() {
		if a, ok := e.ContextMap()["action"].(string); ok {
			out = append(out, a)
		}
	}
	return out
}
