// Package session owns the identity of the signed-in user and its lifecycle.
//
// The Manager is a two-state machine, Anonymous and Authenticated. Every
// Authenticated period gets a fresh epoch and a context that is cancelled
// when the period ends. Both travel in a Ticket handed to asynchronous work,
// which checks the Ticket before committing results so a slow response for a
// previous user can never land in the next user's cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/studenthub/internal/client/keyedstore"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

var ErrNoIdentity = errors.New("user has no identity")

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Ticket identifies one Authenticated period.
type Ticket struct {
	Identity string
	Epoch    uint64
	ctx      context.Context
}

// Context is cancelled when the period ends.
func (t Ticket) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Valid reports whether the ticket was issued for an authenticated user.
func (t Ticket) Valid() bool { return t.Identity != "" && t.Epoch != 0 }

// Same reports whether both tickets belong to the same period.
func (t Ticket) Same(o Ticket) bool { return t.Epoch == o.Epoch && t.Identity == o.Identity }

// Listener is notified of transitions. SessionStarted runs only after the
// identity has been persisted.
type Listener interface {
	SessionStarted(ctx context.Context, t Ticket)
	SessionEnded(ctx context.Context)
}

// PendingPasswordReset is taken from a reset deep link and consumed once.
type PendingPasswordReset struct {
	Token string
	Email string
}

type Manager struct {
	transition sync.Mutex // serializes Login/Logout/Restore

	mu      sync.RWMutex
	state   State
	user    models.User
	epoch   uint64
	ticket  Ticket
	cancel  context.CancelFunc
	pending *PendingPasswordReset

	listeners []Listener
	store     *keyedstore.Store
	log       logging.Logger
}

func NewManager(store *keyedstore.Store, log logging.Logger) *Manager {
	return &Manager{store: store, log: log.With("component", "session")}
}

// Subscribe registers l for future transitions.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Restore starts Authenticated when a persisted profile with an identity is
// found. Unreadable or empty state leaves the manager Anonymous.
func (m *Manager) Restore(ctx context.Context) State {
	m.transition.Lock()
	defer m.transition.Unlock()

	var u models.User
	if !m.store.LoadSession(ctx, &u) || u.Identity() == "" {
		return m.State()
	}
	m.start(ctx, u)
	m.log.Info(ctx, "session restored", "user", u.Identity())
	return Authenticated
}

// Login switches to u. Logging in as the already active identity only
// refreshes the profile; a different identity ends the current period first.
func (m *Manager) Login(ctx context.Context, u models.User) error {
	if u.Identity() == "" {
		return ErrNoIdentity
	}

	m.transition.Lock()
	defer m.transition.Unlock()

	cur, ok := m.Current()
	if ok && cur.Identity() == u.Identity() {
		return m.updateProfile(ctx, u)
	}

	if err := m.store.SaveSession(ctx, u); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if ok {
		m.end(ctx)
	}
	m.start(ctx, u)
	m.log.Info(ctx, "logged in", "user", u.Identity())
	return nil
}

// Logout clears the persisted identity and ends the current period.
func (m *Manager) Logout(ctx context.Context) error {
	m.transition.Lock()
	defer m.transition.Unlock()
	return m.logout(ctx)
}

func (m *Manager) logout(ctx context.Context) error {
	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if m.State() == Authenticated {
		m.end(ctx)
		m.log.Info(ctx, "logged out")
	}
	return nil
}

// UpdateProfile replaces the displayed profile of the current identity.
// It never reloads caches.
func (m *Manager) UpdateProfile(ctx context.Context, u models.User) error {
	m.transition.Lock()
	defer m.transition.Unlock()
	return m.updateProfile(ctx, u)
}

func (m *Manager) updateProfile(ctx context.Context, u models.User) error {
	cur, ok := m.Current()
	if !ok {
		return ErrNoIdentity
	}
	if cur.Identity() != u.Identity() {
		return fmt.Errorf("profile belongs to %q, session is %q", u.Identity(), cur.Identity())
	}
	if err := m.store.SaveSession(ctx, u); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
	return nil
}

// HandleDeepLink inspects a URL for a password reset link. When one is found
// the token is kept as the pending reset and the user is logged out so the
// reset flow starts from a clean slate.
func (m *Manager) HandleDeepLink(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse link: %w", err)
	}
	q := u.Query()
	token := q.Get("token")
	if token == "" {
		return false, nil
	}

	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.Lock()
	m.pending = &PendingPasswordReset{Token: token, Email: q.Get("email")}
	m.mu.Unlock()

	return true, m.logout(ctx)
}

// PendingReset returns the pending reset without consuming it.
func (m *Manager) PendingReset() (PendingPasswordReset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return PendingPasswordReset{}, false
	}
	return *m.pending, true
}

// ConsumePendingReset returns the pending reset and clears it.
func (m *Manager) ConsumePendingReset() (PendingPasswordReset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return PendingPasswordReset{}, false
	}
	p := *m.pending
	m.pending = nil
	return p, true
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns the signed-in profile.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.state == Authenticated
}

// Ticket returns the ticket of the current period; it is invalid while
// Anonymous.
func (m *Manager) Ticket() Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ticket
}

// IsCurrent reports whether t still names the active period.
func (m *Manager) IsCurrent(t Ticket) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == Authenticated && m.ticket.Same(t)
}

func (m *Manager) start(ctx context.Context, u models.User) {
	m.mu.Lock()
	m.epoch++
	tctx, cancel := context.WithCancel(context.Background())
	m.state = Authenticated
	m.user = u
	m.cancel = cancel
	m.ticket = Ticket{Identity: u.Identity(), Epoch: m.epoch, ctx: tctx}
	t := m.ticket
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.SessionStarted(ctx, t)
	}
}

func (m *Manager) end(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.epoch++
	m.state = Anonymous
	m.user = models.User{}
	m.ticket = Ticket{}
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.SessionEnded(ctx)
	}
}
