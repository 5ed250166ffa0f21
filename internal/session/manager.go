// Package session owns the single authenticated game session of the process.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wayfarer-go/wayfarer/internal/cache"
	"github.com/wayfarer-go/wayfarer/internal/credstore"
	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// State of the session handle.
type State int32

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "UNAUTHENTICATED"
	case Authenticating:
		return "AUTHENTICATING"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// Login messages shown to the user.
const (
	MessageLoginSuccess       = "Login successful"
	MessageInvalidCredentials = "Invalid username or password"
	MessageServerBusy         = "Servers are busy. Please try again later"
)

// DefaultLootRadius is the reach of the player in metres.
const DefaultLootRadius = 70.0

// LoginListener receives every completed login attempt.
type LoginListener func(core.LoginResult)

// Config tunes timeouts and pacing.
type Config struct {
	// CallTimeout bounds each session-bound remote call. Zero disables the bound.
	CallTimeout time.Duration
	// LoginTimeout bounds an authentication attempt. Zero disables the bound.
	LoginTimeout time.Duration
	// LootRadius in metres; zero or less disables the range check.
	LootRadius float64
	// EncounterPace is the pause between a successful encounter and the capture call.
	EncounterPace time.Duration
	// ActionPace is the pause after each evolve or transfer.
	ActionPace time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		CallTimeout:   15 * time.Second,
		LoginTimeout:  30 * time.Second,
		LootRadius:    DefaultLootRadius,
		EncounterPace: 2 * time.Second,
		ActionPace:    time.Second,
	}
}

// Dependencies holds all dependencies for the session manager
type Dependencies struct {
	Client gameclient.Client
	Store  credstore.Store
	Logger *slog.Logger
	Config Config
}

// Manager owns the session handle; no other component writes it.
type Manager struct {
	client gameclient.Client
	store  credstore.Store
	log    *slog.Logger
	cfg    Config

	// loginMu is held for the whole lifetime of a login attempt.
	loginMu sync.Mutex

	mu         sync.RWMutex
	handle     gameclient.Session
	lastResult *core.LoginResult
	position   *core.Position
	listener   LoginListener

	// state is readable without mu so log handlers can report it.
	state atomic.Int32

	waypoints *cache.Tracked[gameclient.Waypoint]
	creatures *cache.Tracked[gameclient.Creature]
	gyms      *cache.Tracked[gameclient.Gym]
}

// NewManager creates a session manager with no active session.
func NewManager(deps Dependencies) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client:    deps.Client,
		store:     deps.Store,
		log:       logger.With("component", "session"),
		cfg:       deps.Config,
		waypoints: cache.NewTracked(func(w gameclient.Waypoint) string { return w.ID() }),
		creatures: cache.NewTracked(func(c gameclient.Creature) string { return c.ID() }),
		gyms:      cache.NewTracked(func(g gameclient.Gym) string { return g.ID() }),
	}
}

// SetLoginListener registers the single listener notified of login results.
// A nil listener removes it.
func (m *Manager) SetLoginListener(l LoginListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// State returns the current state of the handle.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// HasSession reports whether an authenticated handle is held.
func (m *Manager) HasSession() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handle != nil
}

// LastResult returns the result of the most recent completed login.
func (m *Manager) LastResult() (core.LoginResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastResult == nil {
		return core.LoginResult{}, false
	}
	return *m.lastResult, true
}

// Position returns the last position pushed into the session.
func (m *Manager) Position() (core.Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.position == nil {
		return core.Position{}, false
	}
	return *m.position, true
}

// TrackedCounts returns the sizes of the discovery sets.
func (m *Manager) TrackedCounts() (waypoints, creatures, gyms int) {
	return m.waypoints.Len(), m.creatures.Len(), m.gyms.Len()
}

// LogAttrs describes the session for log records.
func (m *Manager) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("session", m.State().String())}
}

// Login authenticates on its own goroutine. The result is delivered on the
// returned channel, which is closed afterwards, and to the registered listener.
// A second call while one is in flight fails with ErrLoginInProgress.
func (m *Manager) Login(ctx context.Context, username, password string) (<-chan core.LoginResult, error) {
	if !m.loginMu.TryLock() {
		return nil, ErrLoginInProgress
	}
	m.state.Store(int32(Authenticating))

	out := make(chan core.LoginResult, 1)
	creds := core.Credentials{Username: username, Password: password}
	go func() {
		defer m.loginMu.Unlock()
		result := m.authenticate(ctx, creds)

		m.mu.Lock()
		m.lastResult = &result
		listener := m.listener
		m.mu.Unlock()

		out <- result
		close(out)
		if listener != nil {
			listener(result)
		}
	}()
	return out, nil
}

// Relogin starts a login with the cached credentials.
func (m *Manager) Relogin(ctx context.Context) (<-chan core.LoginResult, error) {
	creds, ok := m.cachedCredentials(ctx)
	if !ok {
		return nil, ErrNoCachedCredentials
	}
	return m.Login(ctx, creds.Username, creds.Password)
}

// HasCachedCredentials reports whether a credential pair was bound.
func (m *Manager) HasCachedCredentials(ctx context.Context) bool {
	_, ok := m.cachedCredentials(ctx)
	return ok
}

// Logout drops the handle and forgets the cached credentials.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.handle = nil
	m.lastResult = nil
	m.mu.Unlock()
	m.state.Store(int32(Unauthenticated))

	err := errors.Join(
		m.store.Delete(ctx, credstore.KeyUsername),
		m.store.Delete(ctx, credstore.KeyPassword),
	)
	if err != nil {
		return err
	}
	m.log.Info("Signed out")
	return nil
}

func (m *Manager) authenticate(ctx context.Context, creds core.Credentials) core.LoginResult {
	if !creds.Valid() {
		m.fail()
		return core.LoginResult{Status: core.LoginInvalidCredentials, Message: MessageInvalidCredentials}
	}

	lctx, cancel := withTimeout(ctx, m.cfg.LoginTimeout)
	defer cancel()

	start := time.Now()
	h, err := m.client.Authenticate(lctx, creds)
	if err != nil {
		m.fail()
		if errors.Is(err, gameclient.ErrAuthFailed) {
			m.log.Warn("Login rejected", "username", creds.Username)
			return core.LoginResult{Status: core.LoginInvalidCredentials, Message: MessageInvalidCredentials}
		}
		m.log.Warn("Login failed", "username", creds.Username, "error", err)
		return core.LoginResult{Status: core.LoginServerBusy, Message: MessageServerBusy}
	}

	m.mu.Lock()
	m.handle = h
	m.mu.Unlock()
	m.state.Store(int32(Authenticated))
	m.log.Info("Login successful", "username", creds.Username, "duration", time.Since(start))

	m.bindCredentials(ctx, creds)
	return core.LoginResult{Status: core.LoginSuccess, Message: MessageLoginSuccess}
}

// fail leaves the handle unset after an unsuccessful attempt.
func (m *Manager) fail() {
	m.mu.Lock()
	m.handle = nil
	m.mu.Unlock()
	m.state.Store(int32(Unauthenticated))
}

// bindCredentials writes the pair only if neither key is present yet, so the
// first successful login binds the cache for good.
func (m *Manager) bindCredentials(ctx context.Context, creds core.Credentials) {
	_, errUser := m.store.Get(ctx, credstore.KeyUsername)
	_, errPass := m.store.Get(ctx, credstore.KeyPassword)
	if !errors.Is(errUser, credstore.ErrNotFound) || !errors.Is(errPass, credstore.ErrNotFound) {
		if errUser != nil && !errors.Is(errUser, credstore.ErrNotFound) {
			m.log.Error("Failed to read credential cache", "error", errUser)
		}
		return
	}

	if err := m.store.Put(ctx, credstore.KeyUsername, creds.Username); err != nil {
		m.log.Error("Failed to cache username", "error", err)
		return
	}
	if err := m.store.Put(ctx, credstore.KeyPassword, creds.Password); err != nil {
		m.log.Error("Failed to cache password", "error", err)
		return
	}
	m.log.Debug("Credentials cached", "username", creds.Username)
}

func (m *Manager) cachedCredentials(ctx context.Context) (core.Credentials, bool) {
	user, err := m.store.Get(ctx, credstore.KeyUsername)
	if err != nil {
		return core.Credentials{}, false
	}
	pass, err := m.store.Get(ctx, credstore.KeyPassword)
	if err != nil {
		return core.Credentials{}, false
	}
	creds := core.Credentials{Username: user, Password: pass}
	return creds, creds.Valid()
}

func (m *Manager) session() (gameclient.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.handle == nil {
		return nil, ErrNoSession
	}
	return m.handle, nil
}

// invalidate drops h if it is still the current handle.
func (m *Manager) invalidate(h gameclient.Session) {
	m.mu.Lock()
	dropped := h != nil && m.handle == h
	if dropped {
		m.handle = nil
	}
	m.mu.Unlock()
	if dropped {
		m.state.Store(int32(Unauthenticated))
		m.log.Warn("Session expired")
	}
}

// call bounds a single remote call by the configured timeout.
func (m *Manager) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, m.cfg.CallTimeout)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// pause waits for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
