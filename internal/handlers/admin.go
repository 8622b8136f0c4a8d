package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/notify"
	"github.com/threadline/storefront/internal/platform/httpx"
)

// AdminHandlers proxy the seller panel CRUD surfaces. Every route sits behind
// RequireAdmin.
type AdminHandlers struct {
	client *backend.Client
}

// NewAdminHandlers constructs the seller panel handlers.
func NewAdminHandlers(client *backend.Client) (*AdminHandlers, error) {
	if client == nil {
		return nil, errors.New("admin handlers: backend client is required")
	}
	return &AdminHandlers{client: client}, nil
}

// RequireAdmin rejects sessions the backend does not recognise as sellers.
func (h *AdminHandlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r)
		if !ok {
			return
		}
		isAdmin, err := clientFor(h.client, sess).IsAdmin(r.Context())
		if err != nil {
			writeBackendError(r.Context(), w, err, r.URL.Path)
			return
		}
		if !isAdmin {
			httpx.WriteError(r.Context(), w, httpx.NewError("forbidden", "seller access required", http.StatusForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Register mounts the seller panel routes.
func (h *AdminHandlers) Register(r chi.Router) {
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{orderID}", h.GetOrder)
	r.Put("/orders/{orderID}/status", h.UpdateOrderStatus)
	r.Delete("/orders/{orderID}", h.DeleteOrder)

	r.Post("/products", h.CreateProduct)
	r.Put("/products/{productID}", h.UpdateProduct)
	r.Delete("/products/{productID}", h.DeleteProduct)

	r.Get("/bundles", h.ListBundles)
	r.Post("/bundles", h.CreateBundle)
	r.Put("/bundles/{bundleID}", h.UpdateBundle)
	r.Delete("/bundles/{bundleID}", h.DeleteBundle)

	r.Get("/promocodes", h.ListPromoCodes)
	r.Post("/promocodes", h.CreatePromoCode)
	r.Put("/promocodes/{promoID}", h.UpdatePromoCode)
	r.Delete("/promocodes/{promoID}", h.DeletePromoCode)

	r.Get("/customers", h.ListCustomers)
}

// ListOrders returns every order.
func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	orders, err := clientFor(h.client, sess).Orders(r.Context())
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrder returns one order with its lines.
func (h *AdminHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	order, err := clientFor(h.client, sess).Order(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": order})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order along its fulfilment states.
func (h *AdminHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if req.Status == "" {
		writeToastError(r.Context(), w, "missing_status", "a status is required")
		return
	}
	if err := clientFor(h.client, sess).UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("order updated")})
}

// DeleteOrder removes an order record.
func (h *AdminHandlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := clientFor(h.client, sess).DeleteOrder(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("order deleted")})
}

// CreateProduct adds a catalog entry.
func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in backend.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if in.Title == "" || in.Price <= 0 {
		writeToastError(r.Context(), w, "invalid_product", "a title and positive price are required")
		return
	}
	product, err := clientFor(h.client, sess).CreateProduct(r.Context(), in)
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"product": product, "toast": notify.OK("product created")})
}

// UpdateProduct replaces a catalog entry.
func (h *AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in backend.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if err := clientFor(h.client, sess).UpdateProduct(r.Context(), chi.URLParam(r, "productID"), in); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("product updated")})
}

// DeleteProduct removes a catalog entry.
func (h *AdminHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := clientFor(h.client, sess).DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("product deleted")})
}

// ListBundles returns every bundle offer.
func (h *AdminHandlers) ListBundles(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	bundles, err := clientFor(h.client, sess).Bundles(r.Context())
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"bundles": bundles})
}

// CreateBundle adds a bundle offer.
func (h *AdminHandlers) CreateBundle(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in backend.BundleInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if in.Title == "" || in.Price <= 0 || len(in.ProductIDs) == 0 {
		writeToastError(r.Context(), w, "invalid_bundle", "a title, positive price, and products are required")
		return
	}
	bundle, err := clientFor(h.client, sess).CreateBundle(r.Context(), in)
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"bundle": bundle, "toast": notify.OK("bundle created")})
}

// UpdateBundle replaces a bundle offer.
func (h *AdminHandlers) UpdateBundle(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in backend.BundleInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if err := clientFor(h.client, sess).UpdateBundle(r.Context(), chi.URLParam(r, "bundleID"), in); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("bundle updated")})
}

// DeleteBundle removes a bundle offer.
func (h *AdminHandlers) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := clientFor(h.client, sess).DeleteBundle(r.Context(), chi.URLParam(r, "bundleID")); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("bundle deleted")})
}

// ListPromoCodes returns the discount codes.
func (h *AdminHandlers) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	codes, err := clientFor(h.client, sess).PromoCodes(r.Context())
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"promocodes": codes})
}

// CreatePromoCode adds a discount code.
func (h *AdminHandlers) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in backend.PromoCodeInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if in.Code == "" || in.Percentage <= 0 || in.Percentage > 100 {
		writeToastError(r.Context(), w, "invalid_promo", "a code and a percentage between 1 and 100 are required")
		return
	}
	code, err := clientFor(h.client, sess).CreatePromoCode(r.Context(), in)
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"promocode": code, "toast": notify.OK("promo code created")})
}

// UpdatePromoCode replaces a discount code.
func (h *AdminHandlers) UpdatePromoCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in backend.PromoCodeInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if err := clientFor(h.client, sess).UpdatePromoCode(r.Context(), chi.URLParam(r, "promoID"), in); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("promo code updated")})
}

// DeletePromoCode removes a discount code.
func (h *AdminHandlers) DeletePromoCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := clientFor(h.client, sess).DeletePromoCode(r.Context(), chi.URLParam(r, "promoID")); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"toast": notify.OK("promo code deleted")})
}

// ListCustomers returns the registered customers.
func (h *AdminHandlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	customers, err := clientFor(h.client, sess).Customers(r.Context())
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"customers": customers})
}
