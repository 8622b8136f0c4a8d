package state

import (
	"testing"

	"github.com/threadline/storefront/internal/domain"
)

func TestSerializeWhitelist(t *testing.T) {
	s := New()
	s.SetAuthenticated(domain.User{ID: "u-1", Name: "Priya", Email: "priya@example.com"}, "tok-1")
	s.Cart().Append(domain.CartLine{ID: "line-1", Quantity: 2})
	s.SetShipping(domain.ShippingExpedited)

	snapshot := s.Serialize()
	if !snapshot.IsAuthenticated || snapshot.User == nil || snapshot.User.ID != "u-1" {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	// Only auth survives the round-trip: the restored state has a fresh cart,
	// default shipping, and no token.
	restored := Init(snapshot)
	if !restored.IsAuthenticated() {
		t.Fatal("auth lost across round-trip")
	}
	if user, ok := restored.User(); !ok || user.ID != "u-1" {
		t.Fatalf("user = %+v ok=%v", user, ok)
	}
	if restored.Cart().Len() != 0 {
		t.Fatal("cart persisted")
	}
	if restored.Shipping() != domain.ShippingStandard {
		t.Fatalf("shipping = %q, want standard", restored.Shipping())
	}
	if restored.Token() != "" {
		t.Fatal("token persisted")
	}
}

func TestInitIgnoresInconsistentSnapshot(t *testing.T) {
	// isAuthenticated without a user is not a valid auth state.
	s := Init(Snapshot{IsAuthenticated: true})
	if s.IsAuthenticated() {
		t.Fatal("authenticated without a user")
	}
}

func TestClearAuth(t *testing.T) {
	s := New()
	s.SetAuthenticated(domain.User{ID: "u-1"}, "tok-1")
	s.ClearAuth()

	if s.IsAuthenticated() || s.Token() != "" {
		t.Fatal("auth state survived ClearAuth")
	}
	if _, ok := s.User(); ok {
		t.Fatal("user survived ClearAuth")
	}
}

func TestSetShippingRejectsUnknown(t *testing.T) {
	s := New()
	if s.SetShipping(domain.ShippingMethod("drone")) {
		t.Fatal("unknown method accepted")
	}
	if s.Shipping() != domain.ShippingStandard {
		t.Fatalf("shipping = %q", s.Shipping())
	}
}

func TestSnapshotUserIsDetached(t *testing.T) {
	s := New()
	s.SetAuthenticated(domain.User{ID: "u-1", Name: "Priya"}, "tok-1")

	snapshot := s.Serialize()
	snapshot.User.Name = "mutated"

	if user, _ := s.User(); user.Name != "Priya" {
		t.Fatalf("live state mutated via snapshot: %q", user.Name)
	}
}
