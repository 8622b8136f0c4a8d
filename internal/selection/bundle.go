package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/threadline/storefront/internal/domain"
)

// ErrUnknownBundleType is returned for bundle types outside the supported offers.
var ErrUnknownBundleType = errors.New("selection: unknown bundle type")

// Bundle orchestrates the 2 or 3 section controllers of one bundle
// customization session. It owns the sections exclusively for the session's
// lifetime and tracks the accordion state the storefront renders: exactly one
// section is expanded at a time, and a reset reopens section 1.
type Bundle struct {
	bundleID    string
	bundleType  domain.BundleType
	sections    []*Section
	openSection int
}

// NewBundle constructs the orchestrator for the given bundle type.
func NewBundle(t domain.BundleType) (*Bundle, error) {
	count := t.SectionCount()
	if count == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBundleType, t)
	}
	sections := make([]*Section, 0, count)
	for n := 1; n <= count; n++ {
		section, err := NewBundleSection(t, n)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return &Bundle{
		bundleType:  t,
		sections:    sections,
		openSection: 1,
	}, nil
}

// SetBundleID records the backend bundle identifier once the fetch succeeds.
// The logo step stays unreachable until it is known.
func (b *Bundle) SetBundleID(id string) {
	b.bundleID = strings.TrimSpace(id)
}

// BundleID returns the backend bundle identifier, empty until fetched.
func (b *Bundle) BundleID() string {
	return b.bundleID
}

// Type returns the bundle type driving section counts and caps.
func (b *Bundle) Type() domain.BundleType {
	return b.bundleType
}

// Section returns the controller for the 1-based section number.
func (b *Bundle) Section(number int) (*Section, error) {
	if number < 1 || number > len(b.sections) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSection, number)
	}
	return b.sections[number-1], nil
}

// Sections returns every section controller in slot order.
func (b *Bundle) Sections() []*Section {
	out := make([]*Section, len(b.sections))
	copy(out, b.sections)
	return out
}

// AllSectionsComplete reports whether every active section fulfils its contract.
func (b *Bundle) AllSectionsComplete() bool {
	for _, section := range b.sections {
		if !section.IsComplete() {
			return false
		}
	}
	return true
}

// CanProceedToLogoStep gates the customization flow: the logo step needs every
// section complete and the bundle fetched from the backend.
func (b *Bundle) CanProceedToLogoStep() bool {
	return b.AllSectionsComplete() && b.bundleID != ""
}

// OpenSection returns the 1-based expanded accordion section.
func (b *Bundle) OpenSection() int {
	return b.openSection
}

// SetOpenSection expands the given section, collapsing the others.
func (b *Bundle) SetOpenSection(number int) error {
	if number < 1 || number > len(b.sections) {
		return fmt.Errorf("%w: %d", ErrUnknownSection, number)
	}
	b.openSection = number
	return nil
}

// ResetAll clears every section atomically and reopens section 1 with the
// others collapsed, which drives what the user sees first after a reset.
// Calling it twice yields the same state as calling it once.
func (b *Bundle) ResetAll() {
	for _, section := range b.sections {
		section.Reset()
	}
	b.openSection = 1
}

// Selection snapshots the whole bundle for cart submission.
func (b *Bundle) Selection() domain.BundleSelection {
	sections := make([]domain.SectionSelection, 0, len(b.sections))
	for _, section := range b.sections {
		sections = append(sections, section.Selection())
	}
	return domain.BundleSelection{
		BundleID:   b.bundleID,
		BundleType: b.bundleType,
		Sections:   sections,
	}
}
