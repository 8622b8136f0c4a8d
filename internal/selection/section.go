package selection

import (
	"errors"
	"fmt"

	"github.com/threadline/storefront/internal/domain"
)

var (
	// ErrNoProduct is returned when a mutation arrives before a product is selected.
	ErrNoProduct = errors.New("selection: no product selected for section")
	// ErrColorNotSelected is returned when quantities target an unselected colour.
	ErrColorNotSelected = errors.New("selection: colour is not selected")
	// ErrColorHasQuantity is returned when removing a colour that still has allocated quantity.
	ErrColorHasQuantity = errors.New("selection: colour has allocated quantity; clear sizes first")
	// ErrUnknownSection is returned for section numbers outside the bundle type's range.
	ErrUnknownSection = errors.New("selection: unknown section")
)

// Section controls the selection sub-state for one product slot: one colour
// set plus one allocation table scoped to the slot's product. The same
// controller drives bundle sections and the single-product customizer; single
// sections carry no exact-quantity contract.
type Section struct {
	number      int
	bundleType  domain.BundleType
	required    int
	maxColors   int
	maxQuantity int

	product    *domain.Product
	colors     *ColorSet
	allocation *Allocation
}

// NewBundleSection constructs the controller for one slot of a bundle.
// Section numbers are 1-based.
func NewBundleSection(t domain.BundleType, number int) (*Section, error) {
	required, ok := RequiredQuantity(t, number)
	if !ok {
		return nil, fmt.Errorf("%w: %s section %d", ErrUnknownSection, t, number)
	}
	colorCap, ok := MaxColors(t, number)
	if !ok {
		return nil, fmt.Errorf("%w: %s section %d", ErrUnknownSection, t, number)
	}
	return &Section{
		number:     number,
		bundleType: t,
		required:   required,
		maxColors:  colorCap,
		// maxQuantity equals the exact contract: a section can never hold
		// more units than it must fulfil.
		maxQuantity: required,
		colors:      NewColorSet(),
		allocation:  NewAllocation(),
	}, nil
}

// NewSingleSection constructs the controller for the single-product
// customizer: no quantity contract, no colour cap beyond the product's range.
func NewSingleSection() *Section {
	return &Section{
		number:     1,
		colors:     NewColorSet(),
		allocation: NewAllocation(),
	}
}

// SelectProduct sets the section's target product. The first selection wins
// for the lifetime of the session; a second call before reset is a no-op, not
// an error, mirroring the storefront's one-product-per-slot behaviour.
func (s *Section) SelectProduct(p domain.Product) bool {
	if s.product != nil {
		return false
	}
	dup := p
	s.product = &dup
	return true
}

// Product returns the selected product, when one has been chosen.
func (s *Section) Product() (domain.Product, bool) {
	if s.product == nil {
		return domain.Product{}, false
	}
	return *s.product, true
}

// ToggleColor adds or removes a colour. Removal is refused while the colour
// still has allocated quantity: the user must clear sizes first rather than
// have quantities silently dropped.
func (s *Section) ToggleColor(color string) (bool, error) {
	if s.product == nil {
		return false, ErrNoProduct
	}
	if s.colors.Contains(color) {
		if s.allocation.ColorTotal(color) > 0 {
			return true, ErrColorHasQuantity
		}
		selected, err := s.colors.Toggle(color, s.maxColors)
		if err != nil {
			return true, err
		}
		s.allocation.RemoveColor(color)
		return selected, nil
	}
	return s.colors.Toggle(color, s.maxColors)
}

// Increment raises the quantity for a colour/size pair, re-checking the
// section cap and the product's stock.
func (s *Section) Increment(color, size string) (int, error) {
	if s.product == nil {
		return s.allocation.Total(), ErrNoProduct
	}
	if !s.colors.Contains(color) {
		return s.allocation.Total(), ErrColorNotSelected
	}
	stock := s.product.StockFor(color, size)
	return s.allocation.Increment(color, size, stock, s.maxQuantity)
}

// Decrement lowers the quantity for a colour/size pair, floored at zero.
func (s *Section) Decrement(color, size string) int {
	return s.allocation.Decrement(color, size)
}

// TrackSize registers a size at quantity zero for every selected colour.
func (s *Section) TrackSize(size string) {
	for _, color := range s.colors.Colors() {
		s.allocation.Track(color, size)
	}
}

// RemoveSize deletes the size across all colours.
func (s *Section) RemoveSize(size string) {
	s.allocation.RemoveSize(size)
}

// Total returns the number of size-units allocated in the section.
func (s *Section) Total() int {
	return s.allocation.Total()
}

// Remaining reports the displayed remaining capacity for bundle sections.
func (s *Section) Remaining() int {
	if s.maxQuantity <= 0 {
		return 0
	}
	return s.allocation.Remaining(s.maxQuantity)
}

// Required returns the exact quantity contract, zero for single sections.
func (s *Section) Required() int {
	return s.required
}

// MaxColors returns the colour cap, zero for single sections.
func (s *Section) MaxColors() int {
	return s.maxColors
}

// Number returns the 1-based slot number.
func (s *Section) Number() int {
	return s.number
}

// Colors returns the selected colours in selection order.
func (s *Section) Colors() []string {
	return s.colors.Colors()
}

// Quantity returns the tracked quantity for a colour/size pair.
func (s *Section) Quantity(color, size string) (int, bool) {
	return s.allocation.Quantity(color, size)
}

// Keys returns the tracked colour/size pairs in the order they were first
// touched.
func (s *Section) Keys() []domain.SelectionKey {
	return s.allocation.Keys()
}

// IsComplete reports whether the section fulfils its contract: every selected
// colour carries non-zero quantity, and bundle sections match their required
// total exactly. Four units against a five-unit contract is incomplete, and so
// is six.
func (s *Section) IsComplete() bool {
	if s.product == nil {
		return false
	}
	if s.colors.Len() == 0 {
		return false
	}
	for _, color := range s.colors.Colors() {
		if s.allocation.ColorTotal(color) == 0 {
			return false
		}
	}
	total := s.allocation.Total()
	if s.required > 0 {
		return total == s.required
	}
	return total > 0
}

// Reset clears the product, colours, and quantities.
func (s *Section) Reset() {
	s.product = nil
	s.colors.Reset()
	s.allocation.Reset()
}

// Selection snapshots the section for cart submission.
func (s *Section) Selection() domain.SectionSelection {
	sel := domain.SectionSelection{
		SelectedColors: s.colors.Colors(),
		Quantities:     s.allocation.Snapshot(),
	}
	if s.product != nil {
		sel.ProductID = s.product.ID
		sel.ProductTitle = s.product.Title
	}
	return sel
}
