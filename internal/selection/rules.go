package selection

import (
	"github.com/threadline/storefront/internal/domain"
)

// requiredQuantity fixes the exact number of size-units each bundle section
// must carry before it is complete. Indexed by section number minus one.
var requiredQuantity = map[domain.BundleType][]int{
	domain.BundleEveryday: {5, 3, 2},
	domain.BundleSolo1:    {3, 2},
	domain.BundleSolo2:    {3, 2},
}

// maxColors fixes how many colours a bundle section may select. The values
// coincide with requiredQuantity today, but the two tables are independent
// concerns and are declared separately on purpose: a future bundle type may
// price five units across three colours.
var maxColors = map[domain.BundleType][]int{
	domain.BundleEveryday: {5, 3, 2},
	domain.BundleSolo1:    {3, 2},
	domain.BundleSolo2:    {3, 2},
}

// RequiredQuantity returns the exact size-unit contract for a bundle section.
// Section numbers are 1-based.
func RequiredQuantity(t domain.BundleType, section int) (int, bool) {
	quantities, ok := requiredQuantity[t]
	if !ok || section < 1 || section > len(quantities) {
		return 0, false
	}
	return quantities[section-1], true
}

// MaxColors returns the colour cap for a bundle section. Section numbers are 1-based.
func MaxColors(t domain.BundleType, section int) (int, bool) {
	caps := maxColors[t]
	if section < 1 || section > len(caps) {
		return 0, false
	}
	return caps[section-1], true
}
