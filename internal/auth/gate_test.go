package auth

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		route         string
		want          string
	}{
		{"anonymous to protected", false, RouteDashboard, RouteLogin},
		{"anonymous to traces", false, "traces", RouteLogin},
		{"anonymous to login", false, RouteLogin, RouteLogin},
		{"authenticated to login", true, RouteLogin, RouteDashboard},
		{"authenticated to protected", true, "audit", "audit"},
		{"authenticated to dashboard", true, RouteDashboard, RouteDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Guard(tt.authenticated, tt.route); got != tt.want {
				t.Errorf("Guard(%v, %q) = %q, want %q", tt.authenticated, tt.route, got, tt.want)
			}
		})
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewSessionStore(path)

	sess := &Session{
		Account:     "admin@smartfactory.example",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
	}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.Account != sess.Account {
		t.Fatalf("loaded = %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	loaded, err = store.Load()
	if err != nil || loaded != nil {
		t.Fatalf("after clear: %+v, %v", loaded, err)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
}

func TestSessionStoreExpiredIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)

	sess := &Session{Account: "a", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Fatalf("expired session surfaced: %+v", loaded)
	}
}

func TestSessionStoreCorruptIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	loaded, err := NewSessionStore(path).Load()
	if err != nil || loaded != nil {
		t.Fatalf("corrupt session: %+v, %v", loaded, err)
	}
}

func TestGatePicksUpPersistedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)
	sess := &Session{Account: "admin", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	gate := NewGate(store, NewDeviceFlow("client", "https://login.example", nil), testLogger())
	current, ok := gate.Current()
	if !ok || current.Account != "admin" {
		t.Fatalf("Current() = %+v, %v", current, ok)
	}
	if gate.State() != StateAuthenticated {
		t.Fatalf("state = %v", gate.State())
	}

	if err := gate.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := gate.Current(); ok {
		t.Fatal("session survived logout")
	}
}
