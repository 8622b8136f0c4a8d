// Package backend is the typed client for the commerce REST backend. The
// backend owns all authoritative state; this service only mirrors it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/threadline/storefront/internal/domain"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an error response body is read for the message.
const maxErrorBody = 4 << 10

// Client issues JSON calls against the commerce backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a backend client for the configured base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithBase returns a client targeting the override base URL, keeping the
// configured default when the override is blank. Sessions may point the
// storefront at a different backend instance at runtime.
func (c *Client) WithBase(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || baseURL == c.baseURL {
		return c
	}
	dup := *c
	dup.baseURL = baseURL
	return &dup
}

// WithToken returns a client that sends the session's bearer token.
func (c *Client) WithToken(token string) *Client {
	token = strings.TrimSpace(token)
	if token == c.token {
		return c
	}
	dup := *c
	dup.token = token
	return &dup
}

// BaseURL returns the base URL this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("backend: join %s: %w", path, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("backend: request %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusToError(resp.StatusCode, drainError(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

// drainError extracts the message from a backend error envelope, falling back
// to the raw body.
func drainError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// Wire payloads. The backend keys records with "_id" and sends prices in pence.

type sizeStockPayload struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

type colorPayload struct {
	Color string             `json:"color"`
	Image string             `json:"image,omitempty"`
	Sizes []sizeStockPayload `json:"sizes,omitempty"`
}

type productPayload struct {
	ID          string         `json:"_id"`
	Title       string         `json:"title"`
	Price       int64          `json:"price"`
	Colors      []colorPayload `json:"colors"`
	Size        []string       `json:"size"`
	ProductType []string       `json:"productType"`
}

func (p productPayload) toDomain() domain.Product {
	colors := make([]domain.Color, 0, len(p.Colors))
	for _, c := range p.Colors {
		sizes := make([]domain.SizeStock, 0, len(c.Sizes))
		for _, s := range c.Sizes {
			sizes = append(sizes, domain.SizeStock{Size: s.Size, Stock: s.Stock})
		}
		colors = append(colors, domain.Color{Color: c.Color, Image: c.Image, Sizes: sizes})
	}
	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Colors:      colors,
		Sizes:       append([]string(nil), p.Size...),
		ProductType: append([]string(nil), p.ProductType...),
	}
}

type bundlePayload struct {
	ID             string           `json:"_id"`
	Title          string           `json:"title"`
	Price          int64            `json:"price"`
	Thumbnail      string           `json:"thumbnail"`
	Description    string           `json:"description"`
	Categories     []string         `json:"categories"`
	Products       []productPayload `json:"products"`
	Size           []string         `json:"size"`
	SizeChartImage string           `json:"sizeChartImage,omitempty"`
}

func (b bundlePayload) toDomain() domain.Bundle {
	products := make([]domain.Product, 0, len(b.Products))
	for _, p := range b.Products {
		products = append(products, p.toDomain())
	}
	bundleType := domain.BundleType("")
	if len(b.Categories) > 0 {
		bundleType = domain.BundleType(b.Categories[0])
	}
	return domain.Bundle{
		ID:             b.ID,
		Title:          b.Title,
		Price:          b.Price,
		Thumbnail:      b.Thumbnail,
		Description:    b.Description,
		Type:           bundleType,
		Products:       products,
		Sizes:          append([]string(nil), b.Size...),
		SizeChartImage: b.SizeChartImage,
	}
}

type sectionSelectionPayload struct {
	ProductID      string         `json:"productId"`
	ProductTitle   string         `json:"productTitle,omitempty"`
	SelectedColors []string       `json:"selectedColors"`
	Quantities     map[string]int `json:"quantities"`
}

type cartLinePayload struct {
	ID              string                    `json:"_id,omitempty"`
	ProductID       string                    `json:"productId"`
	Title           string                    `json:"title"`
	Size            string                    `json:"size"`
	Color           string                    `json:"color"`
	Quantity        int                       `json:"quantity"`
	Price           int64                     `json:"price"`
	Method          string                    `json:"method,omitempty"`
	Position        string                    `json:"position,omitempty"`
	TextLine        string                    `json:"textLine,omitempty"`
	Font            string                    `json:"font,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	Logo            string                    `json:"logo,omitempty"`
	UsePreviousLogo bool                      `json:"usePreviousLogo,omitempty"`
	IsBundle        bool                      `json:"isBundle,omitempty"`
	BundleProducts  []sectionSelectionPayload `json:"bundleProducts,omitempty"`
	AddedAt         time.Time                 `json:"addedAt,omitempty"`
}

func cartLineToPayload(line domain.CartLine) cartLinePayload {
	sections := make([]sectionSelectionPayload, 0, len(line.BundleProducts))
	for _, s := range line.BundleProducts {
		quantities := make(map[string]int, len(s.Quantities))
		for key, qty := range s.Quantities {
			quantities[string(key)] = qty
		}
		sections = append(sections, sectionSelectionPayload{
			ProductID:      s.ProductID,
			ProductTitle:   s.ProductTitle,
			SelectedColors: append([]string(nil), s.SelectedColors...),
			Quantities:     quantities,
		})
	}
	return cartLinePayload{
		ID:              line.ID,
		ProductID:       line.ProductID,
		Title:           line.Title,
		Size:            line.Size,
		Color:           line.Color,
		Quantity:        line.Quantity,
		Price:           line.Price,
		Method:          string(line.Method),
		Position:        line.Position,
		TextLine:        line.TextLine,
		Font:            line.Font,
		Notes:           line.Notes,
		Logo:            line.LogoURL,
		UsePreviousLogo: line.UsePreviousLogo,
		IsBundle:        line.IsBundle,
		BundleProducts:  sections,
	}
}

func (p cartLinePayload) toDomain() domain.CartLine {
	sections := make([]domain.SectionSelection, 0, len(p.BundleProducts))
	for _, s := range p.BundleProducts {
		quantities := make(map[domain.SelectionKey]int, len(s.Quantities))
		for key, qty := range s.Quantities {
			quantities[domain.SelectionKey(key)] = qty
		}
		sections = append(sections, domain.SectionSelection{
			ProductID:      s.ProductID,
			ProductTitle:   s.ProductTitle,
			SelectedColors: append([]string(nil), s.SelectedColors...),
			Quantities:     quantities,
		})
	}
	return domain.CartLine{
		ID:              p.ID,
		ProductID:       p.ProductID,
		Title:           p.Title,
		Size:            p.Size,
		Color:           p.Color,
		Quantity:        p.Quantity,
		Price:           p.Price,
		Method:          domain.LogoMethod(p.Method),
		Position:        p.Position,
		TextLine:        p.TextLine,
		Font:            p.Font,
		Notes:           p.Notes,
		LogoURL:         p.Logo,
		UsePreviousLogo: p.UsePreviousLogo,
		IsBundle:        p.IsBundle,
		BundleProducts:  sections,
		AddedAt:         p.AddedAt,
	}
}

// Products fetches the catalog.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var resp struct {
		Products []productPayload `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/", nil, &resp); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, p.toDomain())
	}
	return products, nil
}

// Product fetches one catalog entry.
func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var resp struct {
		Success bool           `json:"success"`
		Product productPayload `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &resp); err != nil {
		return domain.Product{}, err
	}
	return resp.Product.toDomain(), nil
}

// Bundle fetches one multi-product offer.
func (c *Client) Bundle(ctx context.Context, id string) (domain.Bundle, error) {
	var resp struct {
		Bundle bundlePayload `json:"bundle"`
	}
	if err := c.do(ctx, http.MethodGet, "/bundle/"+url.PathEscape(id), nil, &resp); err != nil {
		return domain.Bundle{}, err
	}
	return resp.Bundle.toDomain(), nil
}

// Cart fetches the authoritative cart.
func (c *Client) Cart(ctx context.Context) ([]domain.CartLine, error) {
	var resp struct {
		Cart []cartLinePayload `json:"cart"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart/", nil, &resp); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(resp.Cart))
	for _, l := range resp.Cart {
		lines = append(lines, l.toDomain())
	}
	return lines, nil
}

// LogoFile is an uploaded logo accompanying a cart line.
type LogoFile struct {
	Name    string
	Content io.Reader
}

type addLineResponse struct {
	Success  bool            `json:"success"`
	CartItem cartLinePayload `json:"cartItem"`
	LogoURL  string          `json:"logoUrl"`
}

// AddCartLine creates one cart line. When a logo file accompanies the line the
// request goes up as multipart and the response echoes the stored logo URL,
// which later lines of the same add reuse.
func (c *Client) AddCartLine(ctx context.Context, line domain.CartLine, file *LogoFile) (domain.CartLine, error) {
	var resp addLineResponse
	if file == nil {
		if err := c.do(ctx, http.MethodPost, "/cart/", cartLineToPayload(line), &resp); err != nil {
			return domain.CartLine{}, err
		}
	} else if err := c.addLineMultipart(ctx, line, file, &resp); err != nil {
		return domain.CartLine{}, err
	}

	created := resp.CartItem.toDomain()
	if created.LogoURL == "" {
		created.LogoURL = resp.LogoURL
	}
	return created, nil
}

func (c *Client) addLineMultipart(ctx context.Context, line domain.CartLine, file *LogoFile, out *addLineResponse) error {
	endpoint, err := url.JoinPath(c.baseURL, "/cart/")
	if err != nil {
		return fmt.Errorf("backend: join /cart/: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	payload, err := json.Marshal(cartLineToPayload(line))
	if err != nil {
		return fmt.Errorf("backend: encode cart line: %w", err)
	}
	if err := writer.WriteField("item", string(payload)); err != nil {
		return fmt.Errorf("backend: write item field: %w", err)
	}
	part, err := writer.CreateFormFile("logo", file.Name)
	if err != nil {
		return fmt.Errorf("backend: create logo part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("backend: copy logo: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("backend: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("backend: request /cart/: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: POST /cart/: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return statusToError(resp.StatusCode, drainError(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode /cart/: %w", err)
	}
	return nil
}

// IncreaseCartLine bumps a cart line's quantity by one.
func (c *Client) IncreaseCartLine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/cart/increase/"+url.PathEscape(id), nil, nil)
}

// DecreaseCartLine lowers a cart line's quantity by one.
func (c *Client) DecreaseCartLine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/cart/decrease/"+url.PathEscape(id), nil, nil)
}

// RemoveCartLine deletes a cart line.
func (c *Client) RemoveCartLine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(id), nil, nil)
}

type userPayload struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (u userPayload) toDomain() domain.User {
	return domain.User{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

// CheckAuth validates the session against the backend and returns the user.
func (c *Client) CheckAuth(ctx context.Context) (domain.User, error) {
	var resp struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/check", nil, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User.toDomain(), nil
}

// IsAdmin asks the backend whether the session belongs to a seller.
func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var resp struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/isAdmin", nil, &resp); err != nil {
		return false, err
	}
	return resp.IsAdmin, nil
}

// LoginResult is the authenticated session handed back by the backend.
type LoginResult struct {
	User  domain.User
	Token string
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	var resp struct {
		User  userPayload `json:"user"`
		Token string      `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: resp.User.toDomain(), Token: resp.Token}, nil
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Signup registers a new customer; the backend sends the verification email.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	body := map[string]string{
		"name":     strings.TrimSpace(name),
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	return c.do(ctx, http.MethodPost, "/auth/signup", body, nil)
}

// VerifySignup confirms the emailed verification code.
func (c *Client) VerifySignup(ctx context.Context, email, code string) error {
	body := map[string]string{"email": strings.TrimSpace(email), "code": strings.TrimSpace(code)}
	return c.do(ctx, http.MethodPost, "/auth/signup/verify", body, nil)
}
