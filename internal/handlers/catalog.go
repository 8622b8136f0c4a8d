package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/platform/httpx"
	"github.com/threadline/storefront/internal/session"
)

// CatalogHandlers proxies the product and bundle catalog.
type CatalogHandlers struct {
	client *backend.Client
}

// NewCatalogHandlers constructs the catalog handlers.
func NewCatalogHandlers(client *backend.Client) (*CatalogHandlers, error) {
	if client == nil {
		return nil, errors.New("catalog handlers: backend client is required")
	}
	return &CatalogHandlers{client: client}, nil
}

// Register mounts the catalog routes.
func (h *CatalogHandlers) Register(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)
	r.Get("/bundles/{bundleID}", h.GetBundle)
}

// clientFor resolves the backend client for the session, applying the
// session's base URL override and auth token.
func clientFor(base *backend.Client, sess *session.Session) *backend.Client {
	client := base
	sess.Do(func() {
		client = base.WithBase(sess.BackendURL).WithToken(sess.State.Token())
	})
	return client
}

// ListProducts returns the catalog listing.
func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	products, err := clientFor(h.client, sess).Products(r.Context())
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": products})
}

// GetProduct returns one product. A fetch failure renders the retry-card
// payload rather than the generic error envelope: detail pages are the one
// surface with a full-page error state.
func (h *CatalogHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "productID")
	product, err := clientFor(h.client, sess).Product(r.Context(), id)
	if err != nil {
		h.writeRetryCard(w, r, err, "product")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": product})
}

// GetBundle returns one bundle offer with its products.
func (h *CatalogHandlers) GetBundle(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "bundleID")
	bundle, err := clientFor(h.client, sess).Bundle(r.Context(), id)
	if err != nil {
		h.writeRetryCard(w, r, err, "bundle")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"bundle": bundle})
}

func (h *CatalogHandlers) writeRetryCard(w http.ResponseWriter, r *http.Request, err error, kind string) {
	if errors.Is(err, backend.ErrNotFound) {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_found", "the requested "+kind+" does not exist", http.StatusNotFound))
		return
	}
	httpx.WriteError(r.Context(), w,
		httpx.NewError("catalog_unavailable", "the "+kind+" could not be loaded", http.StatusBadGateway).
			WithDetails(map[string]any{"retryCard": true}))
}
