package selection

import (
	"errors"
	"testing"

	"github.com/threadline/storefront/internal/domain"
)

func testProduct(id string) domain.Product {
	return domain.Product{
		ID:    id,
		Title: "Heavyweight Hoodie",
		Price: 2000,
		Colors: []domain.Color{
			{Color: "Navy", Sizes: []domain.SizeStock{{Size: "S", Stock: 10}, {Size: "M", Stock: 10}, {Size: "L", Stock: 10}}},
			{Color: "Black", Sizes: []domain.SizeStock{{Size: "S", Stock: 10}, {Size: "M", Stock: 10}, {Size: "L", Stock: 1}}},
			{Color: "Stone"},
		},
		Sizes: []string{"S", "M", "L"},
	}
}

func TestSectionSelectProductFirstWins(t *testing.T) {
	section, err := NewBundleSection(domain.BundleSolo1, 1)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}

	if !section.SelectProduct(testProduct("prod-1")) {
		t.Fatal("first selection rejected")
	}
	if section.SelectProduct(testProduct("prod-2")) {
		t.Fatal("second selection accepted")
	}

	product, ok := section.Product()
	if !ok || product.ID != "prod-1" {
		t.Fatalf("product = %q, want prod-1", product.ID)
	}

	// After reset the slot accepts a fresh selection.
	section.Reset()
	if !section.SelectProduct(testProduct("prod-2")) {
		t.Fatal("selection rejected after reset")
	}
}

func TestSectionMutationsRequireProduct(t *testing.T) {
	section, err := NewBundleSection(domain.BundleSolo1, 1)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}

	if _, err := section.ToggleColor("Navy"); !errors.Is(err, ErrNoProduct) {
		t.Fatalf("ToggleColor before product: %v", err)
	}
	if _, err := section.Increment("Navy", "M"); !errors.Is(err, ErrNoProduct) {
		t.Fatalf("Increment before product: %v", err)
	}
}

func TestSectionColorCap(t *testing.T) {
	// Solo1 section 2 allows two colours.
	section, err := NewBundleSection(domain.BundleSolo1, 2)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}
	section.SelectProduct(testProduct("prod-1"))

	for _, color := range []string{"Navy", "Black"} {
		if _, err := section.ToggleColor(color); err != nil {
			t.Fatalf("ToggleColor(%s): %v", color, err)
		}
	}
	if _, err := section.ToggleColor("Stone"); !errors.Is(err, ErrMaxColors) {
		t.Fatalf("expected ErrMaxColors, got %v", err)
	}

	// Deselecting frees a slot; insertion order is preserved for the rest.
	if selected, err := section.ToggleColor("Navy"); err != nil || selected {
		t.Fatalf("deselect Navy: selected=%v err=%v", selected, err)
	}
	if _, err := section.ToggleColor("Stone"); err != nil {
		t.Fatalf("ToggleColor(Stone) after free slot: %v", err)
	}
	got := section.Colors()
	if len(got) != 2 || got[0] != "Black" || got[1] != "Stone" {
		t.Fatalf("colors = %v, want [Black Stone]", got)
	}
}

func TestSectionColorRemovalRefusedWithQuantity(t *testing.T) {
	section, err := NewBundleSection(domain.BundleSolo1, 1)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}
	section.SelectProduct(testProduct("prod-1"))
	if _, err := section.ToggleColor("Navy"); err != nil {
		t.Fatalf("ToggleColor: %v", err)
	}
	if _, err := section.Increment("Navy", "M"); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	selected, err := section.ToggleColor("Navy")
	if !errors.Is(err, ErrColorHasQuantity) {
		t.Fatalf("expected ErrColorHasQuantity, got %v", err)
	}
	if !selected {
		t.Fatal("colour dropped despite refusal")
	}

	// Clearing the quantity unblocks removal.
	section.Decrement("Navy", "M")
	selected, err = section.ToggleColor("Navy")
	if err != nil || selected {
		t.Fatalf("removal after clearing: selected=%v err=%v", selected, err)
	}
	if _, tracked := section.Quantity("Navy", "M"); tracked {
		t.Fatal("allocation entries survived colour removal")
	}
}

func TestSectionIncrementGuards(t *testing.T) {
	section, err := NewBundleSection(domain.BundleSolo1, 2)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}
	section.SelectProduct(testProduct("prod-1"))
	if _, err := section.ToggleColor("Black"); err != nil {
		t.Fatalf("ToggleColor: %v", err)
	}

	if _, err := section.Increment("Navy", "M"); !errors.Is(err, ErrColorNotSelected) {
		t.Fatalf("unselected colour: %v", err)
	}

	// Black/L has one unit of stock.
	if _, err := section.Increment("Black", "L"); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if _, err := section.Increment("Black", "L"); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}

	// Section cap (2 for solo1 section 2) wins over remaining stock.
	if _, err := section.Increment("Black", "S"); err != nil {
		t.Fatalf("second unit: %v", err)
	}
	if _, err := section.Increment("Black", "M"); !errors.Is(err, ErrSectionFull) {
		t.Fatalf("expected ErrSectionFull, got %v", err)
	}
}

func TestSectionExactFulfilment(t *testing.T) {
	// Solo1 section 1 requires exactly three units.
	section, err := NewBundleSection(domain.BundleSolo1, 1)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}
	section.SelectProduct(testProduct("prod-1"))
	if _, err := section.ToggleColor("Navy"); err != nil {
		t.Fatalf("ToggleColor: %v", err)
	}

	for _, step := range []struct {
		size string
		want bool
	}{
		{"S", false},
		{"M", false},
		{"L", true},
	} {
		if _, err := section.Increment("Navy", step.size); err != nil {
			t.Fatalf("Increment(%s): %v", step.size, err)
		}
		if got := section.IsComplete(); got != step.want {
			t.Fatalf("complete after %s = %v, want %v", step.size, got, step.want)
		}
	}

	// Dropping back below the contract makes the section incomplete again.
	section.Decrement("Navy", "L")
	if section.IsComplete() {
		t.Fatal("section complete at 2 of 3 units")
	}
	if remaining := section.Remaining(); remaining != 1 {
		t.Fatalf("remaining = %d, want 1", remaining)
	}
}

func TestSectionCompletenessNeedsEveryColorAllocated(t *testing.T) {
	section, err := NewBundleSection(domain.BundleSolo1, 1)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}
	section.SelectProduct(testProduct("prod-1"))
	for _, color := range []string{"Navy", "Black"} {
		if _, err := section.ToggleColor(color); err != nil {
			t.Fatalf("ToggleColor(%s): %v", color, err)
		}
	}

	// Three Navy units meet the total, but Black has nothing allocated.
	for i := 0; i < 3; i++ {
		if _, err := section.Increment("Navy", "M"); err != nil {
			t.Fatalf("Increment %d: %v", i, err)
		}
	}
	if section.IsComplete() {
		t.Fatal("section complete with an empty selected colour")
	}

	section.Decrement("Navy", "M")
	if _, err := section.Increment("Black", "S"); err != nil {
		t.Fatalf("Increment Black: %v", err)
	}
	if !section.IsComplete() {
		t.Fatal("section incomplete with every colour allocated at the contract total")
	}
}

func TestSingleSectionCompleteness(t *testing.T) {
	section := NewSingleSection()
	section.SelectProduct(testProduct("prod-1"))
	if _, err := section.ToggleColor("Navy"); err != nil {
		t.Fatalf("ToggleColor: %v", err)
	}
	if section.IsComplete() {
		t.Fatal("complete with no quantity")
	}

	// No exact contract: any positive total completes, and there is no cap.
	for i := 0; i < 8; i++ {
		if _, err := section.Increment("Navy", "M"); err != nil {
			t.Fatalf("Increment %d: %v", i, err)
		}
	}
	if !section.IsComplete() {
		t.Fatal("incomplete with positive quantity")
	}
	if remaining := section.Remaining(); remaining != 0 {
		t.Fatalf("single section remaining = %d, want 0", remaining)
	}
}

func TestSectionTrackSizeZeroEntries(t *testing.T) {
	section, err := NewBundleSection(domain.BundleSolo1, 1)
	if err != nil {
		t.Fatalf("NewBundleSection: %v", err)
	}
	section.SelectProduct(testProduct("prod-1"))
	for _, color := range []string{"Navy", "Black"} {
		if _, err := section.ToggleColor(color); err != nil {
			t.Fatalf("ToggleColor(%s): %v", color, err)
		}
	}

	section.TrackSize("M")
	for _, color := range []string{"Navy", "Black"} {
		if qty, tracked := section.Quantity(color, "M"); !tracked || qty != 0 {
			t.Fatalf("%s-M: qty=%d tracked=%v, want tracked zero", color, qty, tracked)
		}
	}
	if total := section.Total(); total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}

	section.RemoveSize("M")
	if _, tracked := section.Quantity("Navy", "M"); tracked {
		t.Fatal("Navy-M survived RemoveSize")
	}
}
