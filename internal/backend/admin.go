package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/threadline/storefront/internal/domain"
)

// Seller panel calls. All of these require an admin session token; the backend
// enforces it and answers 401 otherwise.

type orderPayload struct {
	ID        string            `json:"_id"`
	UserID    string            `json:"userId"`
	Status    string            `json:"status"`
	Items     []cartLinePayload `json:"items"`
	Subtotal  int64             `json:"subtotal"`
	Shipping  int64             `json:"shipping"`
	Total     int64             `json:"total"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (o orderPayload) toDomain() domain.Order {
	lines := make([]domain.CartLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, item.toDomain())
	}
	return domain.Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Lines:     lines,
		Subtotal:  o.Subtotal,
		Shipping:  o.Shipping,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// Orders lists every order for the seller panel.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var resp struct {
		Orders []orderPayload `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, &resp); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id string) (domain.Order, error) {
	var resp struct {
		Order orderPayload `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &resp); err != nil {
		return domain.Order{}, err
	}
	return resp.Order.toDomain(), nil
}

// UpdateOrderStatus moves an order along its fulfilment states.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": strings.TrimSpace(status)}
	return c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id), body, nil)
}

// DeleteOrder removes an order record.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id), nil, nil)
}

// ProductInput is the seller-editable product record.
type ProductInput struct {
	Title       string         `json:"title"`
	Price       int64          `json:"price"`
	Colors      []domain.Color `json:"colors"`
	Size        []string       `json:"size"`
	ProductType []string       `json:"productType"`
}

// CreateProduct adds a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	var resp struct {
		Product productPayload `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/products/", in, &resp); err != nil {
		return domain.Product{}, err
	}
	return resp.Product.toDomain(), nil
}

// UpdateProduct replaces a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in, nil)
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// BundleInput is the seller-editable bundle record.
type BundleInput struct {
	Title          string   `json:"title"`
	Price          int64    `json:"price"`
	Thumbnail      string   `json:"thumbnail,omitempty"`
	Description    string   `json:"description,omitempty"`
	Categories     []string `json:"categories"`
	ProductIDs     []string `json:"productIds"`
	Size           []string `json:"size"`
	SizeChartImage string   `json:"sizeChartImage,omitempty"`
}

// Bundles lists every bundle offer.
func (c *Client) Bundles(ctx context.Context) ([]domain.Bundle, error) {
	var resp struct {
		Bundles []bundlePayload `json:"bundles"`
	}
	if err := c.do(ctx, http.MethodGet, "/bundle/", nil, &resp); err != nil {
		return nil, err
	}
	bundles := make([]domain.Bundle, 0, len(resp.Bundles))
	for _, b := range resp.Bundles {
		bundles = append(bundles, b.toDomain())
	}
	return bundles, nil
}

// CreateBundle adds a bundle offer.
func (c *Client) CreateBundle(ctx context.Context, in BundleInput) (domain.Bundle, error) {
	var resp struct {
		Bundle bundlePayload `json:"bundle"`
	}
	if err := c.do(ctx, http.MethodPost, "/bundle/", in, &resp); err != nil {
		return domain.Bundle{}, err
	}
	return resp.Bundle.toDomain(), nil
}

// UpdateBundle replaces a bundle offer.
func (c *Client) UpdateBundle(ctx context.Context, id string, in BundleInput) error {
	return c.do(ctx, http.MethodPut, "/bundle/"+url.PathEscape(id), in, nil)
}

// DeleteBundle removes a bundle offer.
func (c *Client) DeleteBundle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/bundle/"+url.PathEscape(id), nil, nil)
}

type promoCodePayload struct {
	ID         string     `json:"_id"`
	Code       string     `json:"code"`
	Percentage int        `json:"percentage"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func (p promoCodePayload) toDomain() domain.PromoCode {
	return domain.PromoCode{
		ID:         p.ID,
		Code:       p.Code,
		Percentage: p.Percentage,
		Active:     p.Active,
		ExpiresAt:  p.ExpiresAt,
	}
}

// PromoCodeInput is the seller-editable promo code record.
type PromoCodeInput struct {
	Code       string     `json:"code"`
	Percentage int        `json:"percentage"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// PromoCodes lists the discount codes.
func (c *Client) PromoCodes(ctx context.Context) ([]domain.PromoCode, error) {
	var resp struct {
		PromoCodes []promoCodePayload `json:"promocodes"`
	}
	if err := c.do(ctx, http.MethodGet, "/promocodes/", nil, &resp); err != nil {
		return nil, err
	}
	codes := make([]domain.PromoCode, 0, len(resp.PromoCodes))
	for _, p := range resp.PromoCodes {
		codes = append(codes, p.toDomain())
	}
	return codes, nil
}

// CreatePromoCode adds a discount code.
func (c *Client) CreatePromoCode(ctx context.Context, in PromoCodeInput) (domain.PromoCode, error) {
	var resp struct {
		PromoCode promoCodePayload `json:"promocode"`
	}
	if err := c.do(ctx, http.MethodPost, "/promocodes/", in, &resp); err != nil {
		return domain.PromoCode{}, err
	}
	return resp.PromoCode.toDomain(), nil
}

// UpdatePromoCode replaces a discount code.
func (c *Client) UpdatePromoCode(ctx context.Context, id string, in PromoCodeInput) error {
	return c.do(ctx, http.MethodPut, "/promocodes/"+url.PathEscape(id), in, nil)
}

// DeletePromoCode removes a discount code.
func (c *Client) DeletePromoCode(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/promocodes/"+url.PathEscape(id), nil, nil)
}

type customerPayload struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// Customers lists the registered customers for the seller panel.
func (c *Client) Customers(ctx context.Context) ([]domain.Customer, error) {
	var resp struct {
		Customers []customerPayload `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers/", nil, &resp); err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(resp.Customers))
	for _, cu := range resp.Customers {
		customers = append(customers, domain.Customer{
			ID:        cu.ID,
			Name:      cu.Name,
			Email:     cu.Email,
			Verified:  cu.Verified,
			CreatedAt: cu.CreatedAt,
		})
	}
	return customers, nil
}
