package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threadline/storefront/internal/domain"
)

// fakeCommerce is the minimal backend the customization flow talks to: one
// product, one bundle, and a cart that assigns line ids.
type fakeCommerce struct {
	mux       *http.ServeMux
	addCalls  atomic.Int64
	failAddAt int64
}

func newFakeCommerce() *fakeCommerce {
	f := &fakeCommerce{mux: http.NewServeMux()}

	product := map[string]any{
		"_id":   "tee-1",
		"title": "Heavyweight Tee",
		"price": 2000,
		"colors": []map[string]any{
			{
				"color": "Navy",
				"sizes": []map[string]any{
					{"size": "S", "stock": 10},
					{"size": "M", "stock": 10},
					{"size": "L", "stock": 10},
				},
			},
			{"color": "Black"},
		},
		"size": []string{"S", "M", "L"},
	}

	f.mux.HandleFunc("/products/tee-1", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		writeFakeJSON(w, map[string]any{"success": true, "product": product})
	}))
	f.mux.HandleFunc("/bundle/bundle-1", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		writeFakeJSON(w, map[string]any{"bundle": map[string]any{
			"_id":        "bundle-1",
			"title":      "Everyday Bundle",
			"price":      14000,
			"categories": []string{"everyday"},
			"products":   []any{product},
		}})
	}))
	f.mux.HandleFunc("/cart/", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		n := f.addCalls.Add(1)
		if f.failAddAt > 0 && n >= f.failAddAt {
			w.WriteHeader(http.StatusInternalServerError)
			writeFakeJSON(w, map[string]any{"message": "stock changed"})
			return
		}
		var item map[string]any
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		item["_id"] = fmt.Sprintf("line-%d", n)
		writeFakeJSON(w, map[string]any{"success": true, "cartItem": item})
	}))

	return f
}

// requireMethod emulates Go 1.22 "METHOD /path" mux patterns on older
// toolchains: wrong methods get 405, as the patterned mux would answer.
func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func writeFakeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func startFakeCommerce(t *testing.T) (*fakeCommerce, string) {
	t.Helper()
	f := newFakeCommerce()
	server := httptest.NewServer(f.mux)
	t.Cleanup(server.Close)
	return f, server.URL
}

type stateResponse struct {
	Mode             string `json:"mode"`
	Complete         bool   `json:"complete"`
	CanProceedToLogo bool   `json:"canProceedToLogo"`
	OpenSection      int    `json:"openSection"`
	Sections         []struct {
		Number   int  `json:"number"`
		Total    int  `json:"total"`
		Complete bool `json:"complete"`
	} `json:"sections"`
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var state stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func TestSingleCustomizationHappyPath(t *testing.T) {
	_, backendURL := startFakeCommerce(t)
	app := newTestApp(t, backendURL)

	rec := app.do(http.MethodPost, "/api/v1/customize/start", map[string]string{"productId": "tee-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.Equal(t, "single", state.Mode)
	require.False(t, state.Complete)

	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/colors", map[string]string{"color": "Navy"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Two small, one medium, three large, touched in that order.
	increments := []map[string]string{
		{"color": "Navy", "size": "S"},
		{"color": "Navy", "size": "S"},
		{"color": "Navy", "size": "M"},
		{"color": "Navy", "size": "L"},
		{"color": "Navy", "size": "L"},
		{"color": "Navy", "size": "L"},
	}
	for _, body := range increments {
		rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/quantities/increment", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	state = decodeState(t, rec)
	require.True(t, state.Complete)
	require.True(t, state.CanProceedToLogo)

	rec = app.do(http.MethodPost, "/api/v1/customize/flow/method", map[string]string{"method": "embroidery"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/flow/position", map[string]string{"position": "left_chest"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/flow/logo-type", map[string]string{"type": "text"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/flow/text", map[string]string{"textLine": "Acme Ltd", "font": "Arial"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/customize/finish", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var finish struct {
		Lines []domain.CartLine `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &finish))
	require.Len(t, finish.Lines, 3)

	// One line per size, in the order the sizes were first touched, each
	// carrying the embroidery fee on top of the base price.
	require.Equal(t, "S", finish.Lines[0].Size)
	require.Equal(t, "M", finish.Lines[1].Size)
	require.Equal(t, "L", finish.Lines[2].Size)
	require.Equal(t, 2, finish.Lines[0].Quantity)
	require.Equal(t, 1, finish.Lines[1].Quantity)
	require.Equal(t, 3, finish.Lines[2].Quantity)
	for _, line := range finish.Lines {
		require.Equal(t, int64(2550), line.Price)
		require.Equal(t, "Acme Ltd", line.TextLine)
		require.False(t, line.UsePreviousLogo)
	}

	// The committed lines land in the local cart mirror.
	rec = app.do(http.MethodGet, "/api/v1/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mirror struct {
		Lines []domain.CartLine `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mirror))
	require.Len(t, mirror.Lines, 3)

	// The customization is cleared once everything is in the cart.
	rec = app.do(http.MethodGet, "/api/v1/customize/state", nil)
	require.Equal(t, "idle", decodeState(t, rec).Mode)
}

func TestFlowGatedUntilSelectionComplete(t *testing.T) {
	_, backendURL := startFakeCommerce(t)
	app := newTestApp(t, backendURL)

	rec := app.do(http.MethodPost, "/api/v1/customize/start", map[string]string{"productId": "tee-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/customize/flow/method", map[string]string{"method": "embroidery"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "selection_incomplete", decodeEnvelope(t, rec).Error)
}

func TestBundleStartOpensSections(t *testing.T) {
	_, backendURL := startFakeCommerce(t)
	app := newTestApp(t, backendURL)

	rec := app.do(http.MethodPost, "/api/v1/customize/start", map[string]string{"bundleId": "bundle-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	state := decodeState(t, rec)
	require.Equal(t, "bundle", state.Mode)
	require.Len(t, state.Sections, 3)
	require.Equal(t, 1, state.OpenSection)

	// Section mutations need a product picked first.
	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/colors", map[string]string{"color": "Navy"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "no_product", decodeEnvelope(t, rec).Error)

	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/product", map[string]string{"productId": "tee-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/colors", map[string]string{"color": "Navy"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIncrementRefusedBeyondSectionCap(t *testing.T) {
	_, backendURL := startFakeCommerce(t)
	app := newTestApp(t, backendURL)

	rec := app.do(http.MethodPost, "/api/v1/customize/start", map[string]string{"bundleId": "bundle-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/product", map[string]string{"productId": "tee-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/colors", map[string]string{"color": "Navy"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The first everyday section holds exactly five units.
	body := map[string]string{"color": "Navy", "size": "M"}
	for i := 0; i < 5; i++ {
		rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/quantities/increment", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/quantities/increment", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "section_full", decodeEnvelope(t, rec).Error)
}

func TestFinishPartialFailureKeepsCommittedLines(t *testing.T) {
	commerce, backendURL := startFakeCommerce(t)
	commerce.failAddAt = 2
	app := newTestApp(t, backendURL)

	rec := app.do(http.MethodPost, "/api/v1/customize/start", map[string]string{"productId": "tee-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/colors", map[string]string{"color": "Navy"})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, body := range []map[string]string{
		{"color": "Navy", "size": "S"},
		{"color": "Navy", "size": "M"},
	} {
		rec = app.do(http.MethodPost, "/api/v1/customize/sections/1/quantities/increment", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	steps := []struct {
		path string
		body map[string]string
	}{
		{"/api/v1/customize/flow/method", map[string]string{"method": "embroidery"}},
		{"/api/v1/customize/flow/position", map[string]string{"position": "left_chest"}},
		{"/api/v1/customize/flow/logo-type", map[string]string{"type": "text"}},
		{"/api/v1/customize/flow/text", map[string]string{"textLine": "Acme Ltd", "font": "Arial"}},
	}
	for _, step := range steps {
		rec = app.do(http.MethodPost, step.path, step.body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = app.do(http.MethodPost, "/api/v1/customize/finish", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Error     string            `json:"error"`
		Committed []domain.CartLine `json:"committed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "partial_submit", resp.Error)
	require.Len(t, resp.Committed, 1)
	require.Equal(t, "S", resp.Committed[0].Size)

	// The committed line stays in the mirror; the customization survives so
	// the visitor can retry.
	rec = app.do(http.MethodGet, "/api/v1/cart/", nil)
	var mirror struct {
		Lines []domain.CartLine `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mirror))
	require.Len(t, mirror.Lines, 1)

	rec = app.do(http.MethodGet, "/api/v1/customize/state", nil)
	require.Equal(t, "single", decodeState(t, rec).Mode)
}
