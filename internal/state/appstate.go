// Package state holds the per-session application state and its persistence
// snapshot.
package state

import (
	"github.com/threadline/storefront/internal/cart"
	"github.com/threadline/storefront/internal/domain"
)

// Snapshot is the persisted slice of the application state. It is a strict
// whitelist: only the auth fields survive a session round-trip. The cart
// mirror and in-flight selections are deliberately absent and are rebuilt
// from the backend or from scratch.
type Snapshot struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *domain.User `json:"user,omitempty"`
}

// AppState is the live per-session state. Access is serialized by the owning
// session's lock.
type AppState struct {
	isAuthenticated bool
	user            *domain.User
	token           string

	cart     *cart.Mirror
	shipping domain.ShippingMethod
}

// New constructs an empty, unauthenticated state.
func New() *AppState {
	return &AppState{
		cart:     cart.NewMirror(),
		shipping: domain.ShippingStandard,
	}
}

// Init restores a state from a persisted snapshot. Everything outside the
// whitelist starts fresh.
func Init(snapshot Snapshot) *AppState {
	s := New()
	if snapshot.IsAuthenticated && snapshot.User != nil {
		dup := *snapshot.User
		s.isAuthenticated = true
		s.user = &dup
	}
	return s
}

// Serialize produces the whitelisted persistence snapshot.
func (s *AppState) Serialize() Snapshot {
	snapshot := Snapshot{IsAuthenticated: s.isAuthenticated}
	if s.user != nil {
		dup := *s.user
		snapshot.User = &dup
	}
	return snapshot
}

// SetAuthenticated records a successful login.
func (s *AppState) SetAuthenticated(user domain.User, token string) {
	dup := user
	s.isAuthenticated = true
	s.user = &dup
	s.token = token
}

// ClearAuth drops the auth state on logout or a rejected session.
func (s *AppState) ClearAuth() {
	s.isAuthenticated = false
	s.user = nil
	s.token = ""
}

// IsAuthenticated reports whether the session holds a logged-in user.
func (s *AppState) IsAuthenticated() bool {
	return s.isAuthenticated
}

// User returns the logged-in user, when there is one.
func (s *AppState) User() (domain.User, bool) {
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Token returns the backend session token for authenticated calls.
func (s *AppState) Token() string {
	return s.token
}

// Cart returns the session's local cart mirror.
func (s *AppState) Cart() *cart.Mirror {
	return s.cart
}

// Shipping returns the chosen delivery method.
func (s *AppState) Shipping() domain.ShippingMethod {
	return s.shipping
}

// SetShipping records the delivery choice, ignoring unknown methods.
func (s *AppState) SetShipping(method domain.ShippingMethod) bool {
	if !method.Valid() {
		return false
	}
	s.shipping = method
	return true
}
