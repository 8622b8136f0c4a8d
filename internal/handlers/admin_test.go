package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threadline/storefront/internal/domain"
)

func startFakeAdmin(t *testing.T, isAdmin bool) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/isAdmin", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		writeFakeJSON(w, map[string]any{"isAdmin": isAdmin})
	}))
	mux.HandleFunc("/orders/", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		writeFakeJSON(w, map[string]any{"orders": []map[string]any{{
			"_id":    "order-1",
			"status": "processing",
			"total":  5100,
		}}})
	}))
	mux.HandleFunc("/orders/order-1", requireMethod(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "shipped", body.Status)
		writeFakeJSON(w, map[string]any{"success": true})
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func TestAdminGateRefusesNonSellers(t *testing.T) {
	app := newTestApp(t, startFakeAdmin(t, false))

	rec := app.do(http.MethodGet, "/api/v1/admin/orders", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "forbidden", decodeEnvelope(t, rec).Error)
}

func TestAdminOrders(t *testing.T) {
	app := newTestApp(t, startFakeAdmin(t, true))

	rec := app.do(http.MethodGet, "/api/v1/admin/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	require.Equal(t, "order-1", resp.Orders[0].ID)
	require.Equal(t, int64(5100), resp.Orders[0].Total)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	app := newTestApp(t, startFakeAdmin(t, true))

	rec := app.do(http.MethodPut, "/api/v1/admin/orders/order-1/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPut, "/api/v1/admin/orders/order-1/status", map[string]string{"status": ""})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "missing_status", decodeEnvelope(t, rec).Error)
}
