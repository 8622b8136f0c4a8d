// Package pricing turns finished customizations into cart line drafts and
// aggregates carts into order summaries. All amounts are int64 pence.
package pricing

import (
	"github.com/threadline/storefront/internal/domain"
)

const (
	// SetupFee is the one-time digitizing charge for a newly uploaded logo,
	// charged once per cart-add action regardless of how many sizes are added.
	SetupFee int64 = 2000
	// EmbroideryFee is the recurring per-line charge for applying a logo.
	EmbroideryFee int64 = 550

	// StandardShipping applies below the free-shipping threshold.
	StandardShipping int64 = 495
	// ExpeditedShipping is a flat rate regardless of subtotal.
	ExpeditedShipping int64 = 695
	// InternationalShipping is a flat rate regardless of subtotal.
	InternationalShipping int64 = 995
	// FreeShippingThreshold is the subtotal at which standard shipping is free.
	FreeShippingThreshold int64 = 10000
)

// Breakdown itemizes one line's price.
type Breakdown struct {
	Base          int64
	SetupFee      int64
	EmbroideryFee int64
}

// Charge is a priced line with its breakdown.
type Charge struct {
	Total     int64
	Breakdown Breakdown
}

// LogoCharge prices one cart line for a logo choice. A new upload pays the
// setup fee on top of the embroidery fee; reusing a previous logo pays the
// embroidery fee only; no logo pays the base price alone.
func LogoCharge(basePrice int64, newUpload, reusePrevious bool) Charge {
	breakdown := Breakdown{Base: basePrice}
	switch {
	case newUpload:
		breakdown.SetupFee = SetupFee
		breakdown.EmbroideryFee = EmbroideryFee
	case reusePrevious:
		breakdown.EmbroideryFee = EmbroideryFee
	}
	return Charge{
		Total:     breakdown.Base + breakdown.SetupFee + breakdown.EmbroideryFee,
		Breakdown: breakdown,
	}
}

// SizePick is one size of a multi-size add, in the order the user selected it.
type SizePick struct {
	Size     string
	Quantity int
}

// LineInput carries the shared fields of a multi-size add.
type LineInput struct {
	ProductID string
	Title     string
	BasePrice int64
	Color     string

	Method   domain.LogoMethod
	Position string
	TextLine string
	Font     string
	Notes    string

	// NewUpload marks a fresh logo file accompanying the first line.
	// PreviousLogoURL marks explicit reuse of an earlier logo. At most one of
	// the two is set; neither set with a non-empty TextLine is a text logo.
	NewUpload       bool
	PreviousLogoURL string

	IsBundle       bool
	BundleProducts []domain.SectionSelection
}

// BuildLines expands a multi-size add into ordered cart line drafts. With a
// new upload, only the first line carries the setup fee and
// UsePreviousLogo=false; every later line reuses the first line's logo and
// pays the embroidery fee alone. The logo URL on lines after the first is
// filled in by the submitter once the first request's response supplies it.
func BuildLines(in LineInput, picks []SizePick) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(picks))
	for i, pick := range picks {
		newUpload := in.NewUpload && i == 0
		reuse := in.PreviousLogoURL != "" || (in.NewUpload && i > 0)

		charge := in.BasePrice
		if in.Method != "" {
			charge = LogoCharge(in.BasePrice, newUpload, reuse).Total
			if !newUpload && !reuse {
				// Text logos pay the embroidery fee per line, never setup.
				charge = in.BasePrice + EmbroideryFee
			}
		}

		lines = append(lines, domain.CartLine{
			ProductID:       in.ProductID,
			Title:           in.Title,
			Size:            pick.Size,
			Color:           in.Color,
			Quantity:        pick.Quantity,
			Price:           charge,
			Method:          in.Method,
			Position:        in.Position,
			TextLine:        in.TextLine,
			Font:            in.Font,
			Notes:           in.Notes,
			LogoURL:         in.PreviousLogoURL,
			UsePreviousLogo: reuse,
			IsBundle:        in.IsBundle,
			BundleProducts:  in.BundleProducts,
		})
	}
	return lines
}

// ShippingCost returns the delivery charge for a method and subtotal. Standard
// is free from the threshold up; expedited and international are flat.
// Unknown methods fall back to standard.
func ShippingCost(method domain.ShippingMethod, subtotal int64) int64 {
	switch method {
	case domain.ShippingExpedited:
		return ExpeditedShipping
	case domain.ShippingInternational:
		return InternationalShipping
	default:
		if subtotal >= FreeShippingThreshold {
			return 0
		}
		return StandardShipping
	}
}

// Summarize aggregates cart lines into the order review totals. The
// embroidery and setup aggregates are display figures: the per-line prices
// already include them, so they are never added on top of the subtotal.
func Summarize(lines []domain.CartLine, method domain.ShippingMethod) domain.OrderSummary {
	if !method.Valid() {
		method = domain.ShippingStandard
	}

	var subtotal, embroideryTotal, setupTotal int64
	for _, line := range lines {
		subtotal += line.Price * int64(line.Quantity)
		if line.Method == "" {
			continue
		}
		embroideryTotal += EmbroideryFee
		if !line.UsePreviousLogo && line.LogoURL != "" {
			setupTotal += SetupFee
		}
	}

	shipping := ShippingCost(method, subtotal)
	return domain.OrderSummary{
		Subtotal:        subtotal,
		EmbroideryTotal: embroideryTotal,
		SetupTotal:      setupTotal,
		ShippingMethod:  method,
		Shipping:        shipping,
		Total:           subtotal + shipping,
	}
}
