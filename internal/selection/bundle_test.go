package selection

import (
	"errors"
	"testing"

	"github.com/threadline/storefront/internal/domain"
)

func TestNewBundleSectionCounts(t *testing.T) {
	cases := []struct {
		bundleType domain.BundleType
		sections   int
	}{
		{domain.BundleEveryday, 3},
		{domain.BundleSolo1, 2},
		{domain.BundleSolo2, 2},
	}

	for _, tc := range cases {
		bundle, err := NewBundle(tc.bundleType)
		if err != nil {
			t.Fatalf("NewBundle(%s): %v", tc.bundleType, err)
		}
		if got := len(bundle.Sections()); got != tc.sections {
			t.Fatalf("%s sections = %d, want %d", tc.bundleType, got, tc.sections)
		}
		if bundle.OpenSection() != 1 {
			t.Fatalf("%s initial open section = %d, want 1", tc.bundleType, bundle.OpenSection())
		}
	}

	if _, err := NewBundle(domain.BundleType("mega")); !errors.Is(err, ErrUnknownBundleType) {
		t.Fatalf("expected ErrUnknownBundleType, got %v", err)
	}
}

func TestBundleEverydayCompletion(t *testing.T) {
	bundle, err := NewBundle(domain.BundleEveryday)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	bundle.SetBundleID("bundle-123")

	// Sections require 5, 3, and 2 units. [5, 3, 1] must not complete.
	units := []int{5, 3, 1}
	for n := 1; n <= 3; n++ {
		section, err := bundle.Section(n)
		if err != nil {
			t.Fatalf("Section(%d): %v", n, err)
		}
		fillSectionUnits(t, section, units[n-1])
	}
	if bundle.AllSectionsComplete() {
		t.Fatal("bundle complete at [5, 3, 1]")
	}
	if bundle.CanProceedToLogoStep() {
		t.Fatal("logo step reachable at [5, 3, 1]")
	}

	section3, _ := bundle.Section(3)
	if _, err := section3.Increment("Navy", "L"); err != nil {
		t.Fatalf("final increment: %v", err)
	}
	if !bundle.AllSectionsComplete() {
		t.Fatal("bundle incomplete at [5, 3, 2]")
	}
	if !bundle.CanProceedToLogoStep() {
		t.Fatal("logo step unreachable at [5, 3, 2] with bundle ID set")
	}
}

func TestBundleLogoStepNeedsBundleID(t *testing.T) {
	bundle, err := NewBundle(domain.BundleSolo1)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	for n, units := range map[int]int{1: 3, 2: 2} {
		section, _ := bundle.Section(n)
		fillSectionUnits(t, section, units)
	}

	if !bundle.AllSectionsComplete() {
		t.Fatal("sections incomplete")
	}
	if bundle.CanProceedToLogoStep() {
		t.Fatal("logo step reachable without a bundle ID")
	}
	bundle.SetBundleID("  bundle-9  ")
	if bundle.BundleID() != "bundle-9" {
		t.Fatalf("bundle ID = %q, want trimmed", bundle.BundleID())
	}
	if !bundle.CanProceedToLogoStep() {
		t.Fatal("logo step unreachable with complete sections and bundle ID")
	}
}

func TestBundleAccordion(t *testing.T) {
	bundle, err := NewBundle(domain.BundleEveryday)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}

	if err := bundle.SetOpenSection(3); err != nil {
		t.Fatalf("SetOpenSection(3): %v", err)
	}
	if bundle.OpenSection() != 3 {
		t.Fatalf("open section = %d, want 3", bundle.OpenSection())
	}
	if err := bundle.SetOpenSection(4); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if err := bundle.SetOpenSection(0); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestBundleResetAllIdempotent(t *testing.T) {
	bundle, err := NewBundle(domain.BundleSolo2)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	for n, units := range map[int]int{1: 3, 2: 2} {
		section, _ := bundle.Section(n)
		fillSectionUnits(t, section, units)
	}
	_ = bundle.SetOpenSection(2)

	assertCleared := func() {
		t.Helper()
		if bundle.OpenSection() != 1 {
			t.Fatalf("open section = %d, want 1", bundle.OpenSection())
		}
		for n := 1; n <= 2; n++ {
			section, _ := bundle.Section(n)
			if _, ok := section.Product(); ok {
				t.Fatalf("section %d kept its product", n)
			}
			if len(section.Colors()) != 0 {
				t.Fatalf("section %d kept colours", n)
			}
			if section.Total() != 0 {
				t.Fatalf("section %d kept quantity", n)
			}
		}
	}

	bundle.ResetAll()
	assertCleared()
	bundle.ResetAll()
	assertCleared()
}

func TestBundleSelectionSnapshot(t *testing.T) {
	bundle, err := NewBundle(domain.BundleSolo1)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	bundle.SetBundleID("bundle-7")
	section, _ := bundle.Section(1)
	fillSectionUnits(t, section, 3)

	snap := bundle.Selection()
	if snap.BundleID != "bundle-7" || snap.BundleType != domain.BundleSolo1 {
		t.Fatalf("snapshot header = %+v", snap)
	}
	if len(snap.Sections) != 2 {
		t.Fatalf("snapshot sections = %d, want 2", len(snap.Sections))
	}
	if snap.Sections[0].ProductID == "" {
		t.Fatal("snapshot lost section 1 product")
	}

	total := 0
	for _, qty := range snap.Sections[0].Quantities {
		total += qty
	}
	if total != 3 {
		t.Fatalf("snapshot section 1 total = %d, want 3", total)
	}

	// The snapshot is detached from live state.
	for key := range snap.Sections[0].Quantities {
		snap.Sections[0].Quantities[key] = 99
	}
	if section.Total() != 3 {
		t.Fatal("mutating the snapshot leaked into the section")
	}
}

// fillSectionUnits drives a section to the given unit count with one colour.
func fillSectionUnits(t *testing.T, section *Section, units int) {
	t.Helper()
	section.SelectProduct(testProduct("prod-x"))
	if !section.colors.Contains("Navy") {
		if _, err := section.ToggleColor("Navy"); err != nil {
			t.Fatalf("ToggleColor: %v", err)
		}
	}
	sizes := []string{"S", "M", "L"}
	for i := 0; i < units; i++ {
		if _, err := section.Increment("Navy", sizes[i%len(sizes)]); err != nil {
			t.Fatalf("Increment %d: %v", i, err)
		}
	}
}
