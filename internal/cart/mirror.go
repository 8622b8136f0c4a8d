// Package cart holds the optimistic local mirror of the backend cart and the
// command machinery that keeps it honest when a remote call fails.
package cart

import (
	"github.com/threadline/storefront/internal/domain"
)

// Mirror is the session-local copy of the cart. The backend copy is
// authoritative; the mirror exists so the UI reflects mutations immediately
// and can be walked back when the remote call fails.
type Mirror struct {
	lines []domain.CartLine
}

// NewMirror constructs an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{}
}

// Replace swaps the mirror contents for a fresh backend snapshot.
func (m *Mirror) Replace(lines []domain.CartLine) {
	m.lines = append([]domain.CartLine(nil), lines...)
}

// Lines returns a copy of the mirrored cart.
func (m *Mirror) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

// Len returns the number of mirrored lines.
func (m *Mirror) Len() int {
	return len(m.lines)
}

// Append adds a committed line to the mirror.
func (m *Mirror) Append(line domain.CartLine) {
	m.lines = append(m.lines, line)
}

func (m *Mirror) indexOf(id string) int {
	for i, line := range m.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// increase bumps a line's quantity and returns the exact inverse of what it
// did. A miss returns a no-op revert.
func (m *Mirror) increase(id string) func() {
	idx := m.indexOf(id)
	if idx < 0 {
		return func() {}
	}
	m.lines[idx].Quantity++
	return func() {
		if i := m.indexOf(id); i >= 0 {
			m.lines[i].Quantity--
		}
	}
}

// decrease lowers a line's quantity, floored at one, and returns the exact
// inverse of what it did. Hitting the floor is a refusal, signalled by a nil
// revert, so the command skips the remote call and the backend cannot drop a
// quantity the mirror still shows as one.
func (m *Mirror) decrease(id string) func() {
	idx := m.indexOf(id)
	if idx < 0 {
		return func() {}
	}
	if m.lines[idx].Quantity <= 1 {
		return nil
	}
	m.lines[idx].Quantity--
	return func() {
		if i := m.indexOf(id); i >= 0 {
			m.lines[i].Quantity++
		}
	}
}

// remove deletes a line and returns a revert that reinserts it at its old slot.
func (m *Mirror) remove(id string) func() {
	idx := m.indexOf(id)
	if idx < 0 {
		return func() {}
	}
	removed := m.lines[idx]
	m.lines = append(m.lines[:idx], m.lines[idx+1:]...)
	return func() {
		at := idx
		if at > len(m.lines) {
			at = len(m.lines)
		}
		m.lines = append(m.lines[:at], append([]domain.CartLine{removed}, m.lines[at:]...)...)
	}
}
