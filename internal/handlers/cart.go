package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/cart"
	"github.com/threadline/storefront/internal/domain"
	"github.com/threadline/storefront/internal/notify"
	"github.com/threadline/storefront/internal/pricing"
)

// CartHandlers expose the session's cart mirror and the optimistic mutation
// commands over it.
type CartHandlers struct {
	client *backend.Client
}

// NewCartHandlers constructs the cart handlers.
func NewCartHandlers(client *backend.Client) (*CartHandlers, error) {
	if client == nil {
		return nil, errors.New("cart handlers: backend client is required")
	}
	return &CartHandlers{client: client}, nil
}

// Register mounts the cart routes.
func (h *CartHandlers) Register(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/", h.AddLine)
	r.Post("/refresh", h.Refresh)
	r.Put("/increase/{lineID}", h.Increase)
	r.Put("/decrease/{lineID}", h.Decrease)
	r.Delete("/remove/{lineID}", h.Remove)
	r.Put("/shipping", h.SetShipping)
	r.Get("/summary", h.Summary)
}

// Get returns the local cart mirror.
func (h *CartHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var lines []domain.CartLine
	sess.Do(func() { lines = sess.State.Cart().Lines() })
	writeJSONResponse(w, http.StatusOK, map[string]any{"lines": lines})
}

// AddLine creates one plain cart line, for adds that skip the customizer
// (reorders, accessories). Customized adds go through the finish endpoint.
func (h *CartHandlers) AddLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var line domain.CartLine
	if err := decodeJSON(r, &line); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if line.ProductID == "" || line.Quantity <= 0 || line.Price <= 0 {
		writeToastError(r.Context(), w, "invalid_line", "a product, positive quantity, and price are required")
		return
	}

	created, err := clientFor(h.client, sess).AddCartLine(r.Context(), line, nil)
	if err != nil {
		writeBackendError(r.Context(), w, err, "/cart")
		return
	}
	sess.Do(func() { sess.State.Cart().Append(created) })
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"line":  created,
		"toast": notify.OK("added to your cart"),
	})
}

// Refresh replaces the mirror with the backend's authoritative cart.
func (h *CartHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	lines, err := clientFor(h.client, sess).Cart(r.Context())
	if err != nil {
		writeBackendError(r.Context(), w, err, "/cart")
		return
	}
	sess.Do(func() { sess.State.Cart().Replace(lines) })
	writeJSONResponse(w, http.StatusOK, map[string]any{"lines": lines})
}

// runCommand executes an optimistic cart command and writes the mirror state
// that results, committed or reverted.
func (h *CartHandlers) runCommand(w http.ResponseWriter, r *http.Request, build func(m *cart.Mirror, remote cart.Remote, id string) cart.Command) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "lineID"))
	if id == "" {
		writeToastError(r.Context(), w, "missing_line", "a cart line id is required")
		return
	}

	client := clientFor(h.client, sess)

	// Serialize routes the local apply and any revert through the session
	// lock; only the remote call runs outside it.
	command := build(sess.State.Cart(), client, id).Serialize(sess.Do)
	err := command.Execute(r.Context())

	var lines []domain.CartLine
	sess.Do(func() { lines = sess.State.Cart().Lines() })

	if err != nil {
		writeBackendError(r.Context(), w, err, "/cart")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"lines": lines})
}

// Increase bumps a line's quantity optimistically.
func (h *CartHandlers) Increase(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, cart.Increase)
}

// Decrease lowers a line's quantity optimistically.
func (h *CartHandlers) Decrease(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, cart.Decrease)
}

// Remove deletes a line optimistically.
func (h *CartHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, cart.Remove)
}

type shippingRequest struct {
	Method string `json:"method"`
}

// SetShipping records the delivery choice for the order summary.
func (h *CartHandlers) SetShipping(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req shippingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}

	method := domain.ShippingMethod(strings.TrimSpace(strings.ToLower(req.Method)))
	accepted := false
	sess.Do(func() { accepted = sess.State.SetShipping(method) })
	if !accepted {
		writeToastError(r.Context(), w, "invalid_shipping", "unknown shipping method")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"shippingMethod": method,
		"toast":          notify.OK("shipping updated"),
	})
}

// Summary aggregates the mirror into the order review totals.
func (h *CartHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var summary domain.OrderSummary
	sess.Do(func() {
		summary = pricing.Summarize(sess.State.Cart().Lines(), sess.State.Shipping())
	})
	writeJSONResponse(w, http.StatusOK, map[string]any{"summary": summary})
}
