package selection

import (
	"errors"
	"strings"
)

// ErrMaxColors is returned when adding a colour would exceed the section's colour cap.
var ErrMaxColors = errors.New("selection: maximum colours for section reached")

// ColorSet is the ordered set of selected colours for a section. Order is
// insertion order, not alphabetical: the UI chip list must match click order.
type ColorSet struct {
	colors []string
}

// NewColorSet constructs an empty colour set.
func NewColorSet() *ColorSet {
	return &ColorSet{}
}

// Toggle adds the colour when absent (rejecting at the cap) or removes it when
// present. Removal of a colour that still has allocated quantity is the
// caller's responsibility to refuse; the set itself only tracks membership.
// Returns whether the colour is selected after the call.
func (c *ColorSet) Toggle(color string, max int) (bool, error) {
	if idx := c.indexOf(color); idx >= 0 {
		c.colors = append(c.colors[:idx], c.colors[idx+1:]...)
		return false, nil
	}
	if max > 0 && len(c.colors) >= max {
		return false, ErrMaxColors
	}
	c.colors = append(c.colors, color)
	return true, nil
}

// Contains reports whether the colour is currently selected.
func (c *ColorSet) Contains(color string) bool {
	return c.indexOf(color) >= 0
}

// Colors returns the selected colours in selection order.
func (c *ColorSet) Colors() []string {
	out := make([]string, len(c.colors))
	copy(out, c.colors)
	return out
}

// Len returns the number of selected colours.
func (c *ColorSet) Len() int {
	return len(c.colors)
}

// Reset clears the selection.
func (c *ColorSet) Reset() {
	c.colors = nil
}

func (c *ColorSet) indexOf(color string) int {
	for i, existing := range c.colors {
		if strings.EqualFold(existing, color) {
			return i
		}
	}
	return -1
}
