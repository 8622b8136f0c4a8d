package selection

import (
	"errors"
	"strings"

	"github.com/threadline/storefront/internal/domain"
)

var (
	// ErrSectionFull is returned when an increment would exceed the section's quantity cap.
	ErrSectionFull = errors.New("selection: section quantity cap reached")
	// ErrOutOfStock is returned when an increment would exceed the stock for the size.
	ErrOutOfStock = errors.New("selection: size out of stock")
)

// Allocation holds per colour/size quantities for one section. A zero quantity
// is a retained entry, distinct from absence: the UI displays selected sizes
// at quantity zero. Entry order is the order pairs were first touched, which
// is the order cart lines are later submitted in.
type Allocation struct {
	quantities map[domain.SelectionKey]int
	order      []domain.SelectionKey
}

// NewAllocation constructs an empty allocation table.
func NewAllocation() *Allocation {
	return &Allocation{quantities: make(map[domain.SelectionKey]int)}
}

func (a *Allocation) track(key domain.SelectionKey) {
	if _, ok := a.quantities[key]; !ok {
		a.quantities[key] = 0
		a.order = append(a.order, key)
	}
}

func (a *Allocation) untrack(match func(domain.SelectionKey) bool) {
	kept := a.order[:0]
	for _, key := range a.order {
		if match(key) {
			delete(a.quantities, key)
			continue
		}
		kept = append(kept, key)
	}
	a.order = kept
}

// Increment raises the quantity for the colour/size pair by one. The store
// refuses over-allocation independently of any UI guard: quantity changes can
// race with stale stock displays, so both the section cap and the per-size
// stock are re-checked here. Returns the new section total.
func (a *Allocation) Increment(color, size string, stock, sectionMax int) (int, error) {
	key := domain.NewSelectionKey(color, size)
	total := a.Total()
	if sectionMax > 0 && total+1 > sectionMax {
		return total, ErrSectionFull
	}
	if a.quantities[key]+1 > stock {
		return total, ErrOutOfStock
	}
	a.track(key)
	a.quantities[key]++
	return total + 1, nil
}

// Decrement lowers the quantity for the colour/size pair by one, floored at
// zero. The zero entry stays tracked.
func (a *Allocation) Decrement(color, size string) int {
	key := domain.NewSelectionKey(color, size)
	if qty, ok := a.quantities[key]; ok && qty > 0 {
		a.quantities[key] = qty - 1
	}
	return a.Total()
}

// Track registers a colour/size pair at quantity zero without allocating.
func (a *Allocation) Track(color, size string) {
	a.track(domain.NewSelectionKey(color, size))
}

// RemoveSize deletes every colour-keyed entry for the size name, used when a
// size is globally deselected.
func (a *Allocation) RemoveSize(size string) {
	a.untrack(func(key domain.SelectionKey) bool {
		return strings.EqualFold(key.Size(), size)
	})
}

// RemoveColor deletes every size-keyed entry for the colour.
func (a *Allocation) RemoveColor(color string) {
	a.untrack(func(key domain.SelectionKey) bool {
		return strings.EqualFold(key.Color(), color)
	})
}

// Quantity returns the tracked quantity for a colour/size pair and whether the
// pair is tracked at all.
func (a *Allocation) Quantity(color, size string) (int, bool) {
	qty, ok := a.quantities[domain.NewSelectionKey(color, size)]
	return qty, ok
}

// Total sums every tracked quantity in the section.
func (a *Allocation) Total() int {
	total := 0
	for _, qty := range a.quantities {
		total += qty
	}
	return total
}

// ColorTotal sums the quantities allocated to one colour across all sizes.
func (a *Allocation) ColorTotal(color string) int {
	total := 0
	for key, qty := range a.quantities {
		if strings.EqualFold(key.Color(), color) {
			total += qty
		}
	}
	return total
}

// Remaining reports the displayed remaining capacity, never negative.
func (a *Allocation) Remaining(sectionMax int) int {
	remaining := sectionMax - a.Total()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot copies the quantity table for serialization.
func (a *Allocation) Snapshot() map[domain.SelectionKey]int {
	out := make(map[domain.SelectionKey]int, len(a.quantities))
	for key, qty := range a.quantities {
		out[key] = qty
	}
	return out
}

// Keys returns the tracked selection keys in the order they were first
// touched.
func (a *Allocation) Keys() []domain.SelectionKey {
	keys := make([]domain.SelectionKey, len(a.order))
	copy(keys, a.order)
	return keys
}

// Reset drops every tracked entry.
func (a *Allocation) Reset() {
	a.quantities = make(map[domain.SelectionKey]int)
	a.order = nil
}
