package session

import (
	"testing"
	"time"
)

func TestCreateAndGet(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.Create()
	if sess.ID() == "" {
		t.Fatal("empty session id")
	}
	if sess.State == nil {
		t.Fatal("session without app state")
	}

	got, ok := store.Get(sess.ID())
	if !ok || got != sess {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if _, ok := store.Get("01HZZZZZZZZZZZZZZZZZZZZZZZ"); ok {
		t.Fatal("unknown id resolved")
	}
	if _, ok := store.Get(""); ok {
		t.Fatal("blank id resolved")
	}
}

func TestIDsAreUnique(t *testing.T) {
	store := NewStore(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.Create().ID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestExpiryAndSlidingWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour, WithClock(func() time.Time { return now }))

	sess := store.Create()

	// Access just before expiry slides the window forward.
	now = now.Add(59 * time.Minute)
	if _, ok := store.Get(sess.ID()); !ok {
		t.Fatal("session expired early")
	}
	now = now.Add(59 * time.Minute)
	if _, ok := store.Get(sess.ID()); !ok {
		t.Fatal("sliding window not applied")
	}

	// Idle past the TTL drops the session on access.
	now = now.Add(2 * time.Hour)
	if _, ok := store.Get(sess.ID()); ok {
		t.Fatal("expired session resolved")
	}
	if store.Len() != 0 {
		t.Fatalf("len = %d, want 0", store.Len())
	}
}

func TestSweepEvictsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour, WithClock(func() time.Time { return now }))

	stale := store.Create()
	now = now.Add(30 * time.Minute)
	fresh := store.Create()
	now = now.Add(45 * time.Minute)

	store.sweep()

	if _, ok := store.sessions[stale.ID()]; ok {
		t.Fatal("stale session survived sweep")
	}
	if _, ok := store.sessions[fresh.ID()]; !ok {
		t.Fatal("fresh session evicted")
	}
}

func TestDelete(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create()
	store.Delete(sess.ID())
	if _, ok := store.Get(sess.ID()); ok {
		t.Fatal("deleted session resolved")
	}
}

func TestDoSerializesMutations(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create()

	done := make(chan struct{})
	counter := 0
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				sess.Do(func() { counter++ })
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if counter != 800 {
		t.Fatalf("counter = %d, want 800", counter)
	}
}
