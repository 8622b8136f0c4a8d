package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/storefront/internal/content"
	"github.com/threadline/storefront/internal/platform/httpx"
)

// ContentHandlers serve the informational pages: size guide, FAQ, delivery.
type ContentHandlers struct {
	store *content.Store
}

// NewContentHandlers constructs the content handlers.
func NewContentHandlers(store *content.Store) (*ContentHandlers, error) {
	if store == nil {
		return nil, errors.New("content handlers: store is required")
	}
	return &ContentHandlers{store: store}, nil
}

// Register mounts the content routes.
func (h *ContentHandlers) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{slug}", h.Page)
}

// List returns the available page slugs.
func (h *ContentHandlers) List(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"pages": h.store.Slugs()})
}

// Page returns one rendered page.
func (h *ContentHandlers) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.store.Page(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			httpx.WriteError(r.Context(), w, httpx.NewError("page_not_found", "no such page", http.StatusNotFound))
			return
		}
		httpx.WriteError(r.Context(), w, httpx.NewError("content_error", "could not render the page", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"page": page})
}
