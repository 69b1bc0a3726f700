// Package auth wraps the corporate identity provider's device-code login
// flow and gates protected console views. The provider itself is external;
// only its HTTP protocol surface is known here.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// State of the identity interaction.
type State int

const (
	StateAnonymous State = iota
	StateInProgress
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "interaction-in-progress"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Gate owns the process-wide identity session. It is constructed once at
// startup, before any view renders, and handed to the shell explicitly.
type Gate struct {
	mu       sync.Mutex
	state    State
	session  *Session
	store    *SessionStore
	provider *DeviceFlow
	logger   *slog.Logger
}

func NewGate(store *SessionStore, provider *DeviceFlow, logger *slog.Logger) *Gate {
	g := &Gate{store: store, provider: provider, logger: logger}
	if sess, err := store.Load(); err == nil && sess != nil {
		g.session = sess
		g.state = StateAuthenticated
	}
	return g
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Current returns the active session, if any.
func (g *Gate) Current() (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated || g.session == nil {
		return nil, false
	}
	return g.session, true
}

// Login runs the device-code interaction. prompt receives the verification
// URI and user code to display while polling continues. A provider failure
// returns the gate to anonymous; it is logged and surfaced to the caller, and
// never fatal to the shell.
func (g *Gate) Login(ctx context.Context, prompt func(verificationURI, userCode string)) (*Session, error) {
	g.mu.Lock()
	if g.state == StateInProgress {
		g.mu.Unlock()
		return nil, fmt.Errorf("login already in progress")
	}
	g.state = StateInProgress
	g.mu.Unlock()

	sess, err := g.provider.Authenticate(ctx, prompt)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = StateAnonymous
		g.logger.Warn("login failed", "error", err)
		return nil, err
	}

	if err := g.store.Save(sess); err != nil {
		// The interactive session still counts; persistence is best effort.
		g.logger.Warn("persist session", "error", err)
	}
	g.session = sess
	g.state = StateAuthenticated
	g.logger.Info("signed in", "account", sess.Account)
	return sess, nil
}

// Logout tears the session down immediately. Provider-side cleanup is not
// awaited.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = nil
	g.state = StateAnonymous
	if err := g.store.Clear(); err != nil {
		g.logger.Warn("clear session", "error", err)
		return err
	}
	g.logger.Info("signed out")
	return nil
}

// Route names used by the guard.
const (
	RouteLogin     = "login"
	RouteDashboard = "dashboard"
)

// Guard implements the route guard: anonymous users asking for a protected
// route land on login, and an authenticated user landing on the login route
// is sent to the dashboard. All other requests pass through.
func Guard(authenticated bool, route string) string {
	if !authenticated && route != RouteLogin {
		return RouteLogin
	}
	if authenticated && route == RouteLogin {
		return RouteDashboard
	}
	return route
}
