package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medware/m/domain"
	"medware/m/internal/auth"
	"medware/m/internal/database"
	"medware/m/internal/migrations"
	"medware/m/internal/reports"
	"medware/m/internal/security"
	"medware/m/internal/stock"
	"medware/m/internal/store"
)

type testServer struct {
	srv   *httptest.Server
	users *store.UserStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	log := zerolog.Nop()
	hasher := security.NewHasher(1000)
	users := store.NewUserStore(db, hasher, log)

	handler := New(Deps{
		Medicines:    store.NewMedicineStore(db, log),
		Suppliers:    store.NewSupplierStore(db, log),
		Users:        users,
		Transactions: store.NewTransactionStore(db, log),
		Alerts:       store.NewAlertStore(db, log),
		Audit:        store.NewAuditStore(db, log),
		Engine:       stock.NewEngine(db, 30, log),
		Reports:      reports.New(db, log),
		Auth:         auth.NewService(users, hasher, 5, 15*time.Minute, log),
		Secret:       "test-secret",
		TokenTTL:     time.Hour,
		Log:          log,
	})

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, users: users}
}

func (ts *testServer) seedUser(t *testing.T, username, password, role string) {
	t.Helper()
	_, err := ts.users.Create(context.Background(), store.CreateUserInput{
		Username: username, Password: password, Role: role,
	})
	require.NoError(t, err)
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := ts.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "worker", "worker-pass", domain.RoleWarehouseWorker)

	resp := ts.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "worker", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/medicines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/medicines", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStockUpdateFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "worker", "worker-pass", domain.RoleWarehouseWorker)
	token := ts.login(t, "worker", "worker-pass")

	resp := ts.request(t, http.MethodPost, "/medicines", token, map[string]any{
		"name": "Aspirin", "price": 5.99, "minimum_stock": 50, "maximum_stock": 500,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, resp, &created)

	resp = ts.request(t, http.MethodPost, fmt.Sprintf("/medicines/%d/stock", created.ID), token, map[string]any{
		"quantity": 50, "transaction_type": "incoming",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.request(t, http.MethodPost, fmt.Sprintf("/medicines/%d/stock", created.ID), token, map[string]any{
		"quantity": 10, "transaction_type": "outgoing",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		Quantity int64 `json:"quantity"`
	}
	decodeBody(t, resp, &updated)
	assert.Equal(t, int64(40), updated.Quantity)

	// Draining more than on hand is a client error, not a server one.
	resp = ts.request(t, http.MethodPost, fmt.Sprintf("/medicines/%d/stock", created.ID), token, map[string]any{
		"quantity": 41, "transaction_type": "outgoing",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, fmt.Sprintf("/medicines/%d/transactions", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ledger []domain.Transaction
	decodeBody(t, resp, &ledger)
	assert.Len(t, ledger, 2)
}

func TestRoleEnforcement(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "worker", "worker-pass", domain.RoleWarehouseWorker)
	ts.seedUser(t, "beancounter", "counter-pass", domain.RoleAccountant)
	workerToken := ts.login(t, "worker", "worker-pass")
	accountantToken := ts.login(t, "beancounter", "counter-pass")

	// Accountants cannot touch stock.
	resp := ts.request(t, http.MethodPost, "/medicines", accountantToken, map[string]any{
		"name": "Ibuprofen", "price": 3.50, "minimum_stock": 0, "maximum_stock": 100,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Warehouse workers cannot read reports.
	resp = ts.request(t, http.MethodGet, "/reports/stock", workerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/reports/stock", accountantToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// User administration is admin-only.
	resp = ts.request(t, http.MethodPost, "/users", workerToken, map[string]any{
		"username": "intruder", "password": "password123", "role": domain.RoleAdmin,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminUserManagement(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.users.EnsureDefaultAdmin(context.Background(), "admin", "admin123"))
	token := ts.login(t, "admin", "admin123")

	resp := ts.request(t, http.MethodPost, "/users", token, map[string]any{
		"username": "newhire", "password": "password123", "role": domain.RoleWarehouseWorker,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []domain.User
	decodeBody(t, resp, &users)
	assert.Len(t, users, 2)
}

func TestResetPasswordChangesLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "worker", "worker-pass", domain.RoleWarehouseWorker)
	token := ts.login(t, "worker", "worker-pass")

	resp := ts.request(t, http.MethodPost, "/auth/reset-password", token, map[string]string{
		"new_password": "fresh-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "worker", "password": "worker-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	ts.login(t, "worker", "fresh-password")
}

func TestMonthlySalesReportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin2", "admin-pass", domain.RoleAdmin)
	token := ts.login(t, "admin2", "admin-pass")

	resp := ts.request(t, http.MethodPost, "/medicines", token, map[string]any{
		"name": "Paracetamol", "price": 2.50, "minimum_stock": 0, "maximum_stock": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, resp, &created)

	resp = ts.request(t, http.MethodPost, fmt.Sprintf("/medicines/%d/stock", created.ID), token, map[string]any{
		"quantity": 20, "transaction_type": "incoming",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.request(t, http.MethodPost, fmt.Sprintf("/medicines/%d/stock", created.ID), token, map[string]any{
		"quantity": 4, "transaction_type": "outgoing",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Transaction dates are stored in UTC.
	now := time.Now().UTC()
	path := fmt.Sprintf("/reports/sales/monthly?year=%d&month=%d", now.Year(), int(now.Month()))
	resp = ts.request(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		TotalSales float64 `json:"total_sales"`
	}
	decodeBody(t, resp, &body)
	assert.InDelta(t, 10.00, body.TotalSales, 1e-9)
}
