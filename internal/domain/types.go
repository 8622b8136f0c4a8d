package domain

import (
	"strings"
	"time"
)

// BundleType identifies a fixed-composition multi-product offer.
type BundleType string

const (
	// BundleSolo1 is the two-product starter bundle.
	BundleSolo1 BundleType = "solo1"
	// BundleSolo2 is the alternate two-product bundle.
	BundleSolo2 BundleType = "solo2"
	// BundleEveryday is the three-product workwear bundle.
	BundleEveryday BundleType = "everyday"
)

// SectionCount returns how many product slots the bundle type carries.
func (t BundleType) SectionCount() int {
	switch t {
	case BundleEveryday:
		return 3
	case BundleSolo1, BundleSolo2:
		return 2
	default:
		return 0
	}
}

// Valid reports whether the bundle type is one of the supported offers.
func (t BundleType) Valid() bool {
	return t.SectionCount() > 0
}

// SizeStock tracks the purchasable stock for one garment size.
type SizeStock struct {
	Size  string
	Stock int
}

// Color describes a garment colourway, optionally with per-size stock.
type Color struct {
	Color string
	Image string
	Sizes []SizeStock
}

// Product is the catalog entry fetched from the commerce backend.
type Product struct {
	ID          string
	Title       string
	Price       int64
	Colors      []Color
	Sizes       []string
	ProductType []string
}

// StockFor returns the stock available for a colour/size pair. Products without
// per-size stock report an effectively unlimited allocation ceiling.
func (p Product) StockFor(color, size string) int {
	for _, c := range p.Colors {
		if !strings.EqualFold(c.Color, color) {
			continue
		}
		if len(c.Sizes) == 0 {
			return UnlimitedStock
		}
		for _, s := range c.Sizes {
			if strings.EqualFold(s.Size, size) {
				return s.Stock
			}
		}
		return 0
	}
	return 0
}

// UnlimitedStock is the allocation ceiling used when the backend supplies no
// per-size stock figures for a colour.
const UnlimitedStock = int(^uint(0) >> 1)

// Bundle is the multi-product offer fetched from the commerce backend.
type Bundle struct {
	ID             string
	Title          string
	Price          int64
	Thumbnail      string
	Description    string
	Type           BundleType
	Products       []Product
	Sizes          []string
	SizeChartImage string
}

// SelectionKey is the composite "<color>-<size>" key into a section's quantity table.
type SelectionKey string

// NewSelectionKey builds the composite key for a colour/size pair.
func NewSelectionKey(color, size string) SelectionKey {
	return SelectionKey(color + "-" + size)
}

// Color returns the colour component of the key.
func (k SelectionKey) Color() string {
	if idx := strings.LastIndex(string(k), "-"); idx >= 0 {
		return string(k)[:idx]
	}
	return string(k)
}

// Size returns the size component of the key.
func (k SelectionKey) Size() string {
	if idx := strings.LastIndex(string(k), "-"); idx >= 0 {
		return string(k)[idx+1:]
	}
	return ""
}

// SectionSelection is the finalized selection for one product slot of a bundle.
type SectionSelection struct {
	ProductID      string
	ProductTitle   string
	SelectedColors []string
	Quantities     map[SelectionKey]int
}

// BundleSelection is the finalized selection for a whole bundle session.
type BundleSelection struct {
	BundleID   string
	BundleType BundleType
	Sections   []SectionSelection
}

// LogoMethod enumerates the garment decoration techniques on offer.
type LogoMethod string

const (
	MethodEmbroidery LogoMethod = "embroidery"
	MethodPrint      LogoMethod = "print"
)

// Positions lists the seven fixed logo placements offered by the customizer.
var Positions = []string{
	"left_chest",
	"right_chest",
	"centre_chest",
	"left_sleeve",
	"right_sleeve",
	"back_large",
	"nape",
}

// ValidPosition reports whether the supplied placement is one of the fixed positions.
func ValidPosition(position string) bool {
	for _, p := range Positions {
		if p == position {
			return true
		}
	}
	return false
}

// CartLine mirrors the backend cart line item. The authoritative copy lives
// server-side; the storefront keeps an optimistic local mirror.
type CartLine struct {
	ID              string
	ProductID       string
	Title           string
	Size            string
	Color           string
	Quantity        int
	Price           int64
	Method          LogoMethod
	Position        string
	TextLine        string
	Font            string
	Notes           string
	LogoURL         string
	UsePreviousLogo bool
	IsBundle        bool
	BundleProducts  []SectionSelection
	AddedAt         time.Time
}

// ShippingMethod enumerates checkout delivery choices.
type ShippingMethod string

const (
	ShippingStandard      ShippingMethod = "standard"
	ShippingExpedited     ShippingMethod = "expedited"
	ShippingInternational ShippingMethod = "international"
)

// Valid reports whether the shipping method is a supported choice.
func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpedited, ShippingInternational:
		return true
	}
	return false
}

// OrderSummary aggregates the cart for the order review screen. EmbroideryTotal
// and SetupTotal are display aggregates already included in Subtotal; they are
// never added on top of it.
type OrderSummary struct {
	Subtotal        int64
	EmbroideryTotal int64
	SetupTotal      int64
	ShippingMethod  ShippingMethod
	Shipping        int64
	Total           int64
}

// Order is the backend order header consumed by the tracking and admin surfaces.
type Order struct {
	ID        string
	UserID    string
	Status    string
	Lines     []CartLine
	Subtotal  int64
	Shipping  int64
	Total     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromoCode is the seller-managed discount code record.
type PromoCode struct {
	ID         string
	Code       string
	Percentage int
	Active     bool
	ExpiresAt  *time.Time
}

// Customer is the backend customer record surfaced in the seller panel.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Verified  bool
	CreatedAt time.Time
}

// User is the authenticated storefront user snapshot.
type User struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}
