// Package session holds the per-visitor state of the storefront server: one
// cart store and one wishlist store per browser session, hydrated from the
// remote API when a session starts and whenever its token changes.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shopfront/internal/backend"
	"shopfront/internal/localstore"
	"shopfront/internal/metrics"
	"shopfront/internal/reconcile"
	"shopfront/internal/store"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Session is one visitor's storefront state.
type Session struct {
	ID       string
	Cart     *store.CartStore
	Wishlist *store.WishlistStore
	Feed     *Feed

	guest localstore.Storage

	mu       sync.Mutex
	user     *UserClaims
	lastSeen time.Time
}

// User returns the signed-in user's claims, or nil for guests.
func (s *Session) User() *UserClaims {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the session's API token, or "" for guests.
func (s *Session) Token() string {
	return s.Cart.Token()
}

// LoggedIn reports whether the session holds a token.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Config configures a Manager.
type Config struct {
	Backend backend.Backend
	// Guest holds guest wishlists; each session gets its own key prefix.
	Guest localstore.Storage
	TTL   time.Duration
	// MergeGuestWishlist copies guest wishlist items into the account on
	// login. When false the guest list is left in place and not shown
	// until logout.
	MergeGuestWishlist bool
	Metrics            *metrics.Metrics
	Logger             *slog.Logger
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Manager creates, finds and evicts sessions.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Guest == nil {
		cfg.Guest = localstore.NewMemory()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a guest session and hydrates its wishlist from guest
// storage. id is the identifier from a verified cookie whose session is no
// longer live, so the guest wishlist saved under it is picked up again; ""
// starts a fresh identity. If a live session with id already exists it is
// returned instead.
func (m *Manager) Create(ctx context.Context, id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	logger := m.logger.With(slog.String("session_id", id))
	feed := NewFeed()
	notifier := store.Multi{feed, store.SlogNotifier{Logger: logger}}

	s := &Session{
		ID:       id,
		Feed:     feed,
		guest:    localstore.WithPrefix(m.cfg.Guest, "session:"+id+":"),
		lastSeen: m.cfg.Now(),
	}
	s.Cart = store.NewCartStore(m.cfg.Backend, store.CartOptions{
		Notifier: notifier,
		OnLoginRequired: func(context.Context) {
			feed.Publish(Event{Type: EventLoginRequired})
		},
		Metrics: m.cfg.Metrics,
		Logger:  logger,
	})
	s.Wishlist = store.NewWishlistStore(m.cfg.Backend, s.guest, store.WishlistOptions{
		Notifier: notifier,
		Metrics:  m.cfg.Metrics,
		Logger:   logger,
	})

	m.mu.Lock()
	if live, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		live.touch(m.cfg.Now())
		return live
	}
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()
	m.cfg.Metrics.SetSessions(n)

	if err := s.Wishlist.Load(ctx); err != nil {
		logger.WarnContext(ctx, "guest wishlist hydration failed", slog.String("error", err.Error()))
	}
	return s
}

// Get returns the live session with id and marks it active.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := m.cfg.Now()
	if now.Sub(s.idleSince()) > m.cfg.TTL {
		m.remove(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Login attaches token to s and re-hydrates both stores from the account.
// Hydration failures are logged and left visible in store state; only a
// token that cannot be decoded is an error.
func (m *Manager) Login(ctx context.Context, s *Session, token string) error {
	claims, err := ParseUserClaims(token)
	if err != nil {
		return err
	}

	var guestIDs []string
	if m.cfg.MergeGuestWishlist {
		guestIDs, err = store.ReadGuestIDs(ctx, s.guest)
		if err != nil {
			m.logger.WarnContext(ctx, "reading guest wishlist for merge failed",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
	}

	s.mu.Lock()
	s.user = claims
	s.mu.Unlock()
	s.Cart.SetToken(token)
	s.Wishlist.SetToken(token)

	wishlistErr := m.hydrate(ctx, s)

	if len(guestIDs) > 0 && wishlistErr == nil {
		m.mergeGuestWishlist(ctx, s, guestIDs)
	}
	return nil
}

// Logout drops the token and shows the device's guest wishlist again.
func (m *Manager) Logout(ctx context.Context, s *Session) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.Cart.SetToken("")
	s.Wishlist.SetToken("")
	s.Wishlist.Reset()
	m.hydrate(ctx, s)
}

// hydrate refreshes cart and wishlist concurrently and returns the
// wishlist error, if any.
func (m *Manager) hydrate(ctx context.Context, s *Session) error {
	var g errgroup.Group
	var wishlistErr error
	g.Go(func() error {
		if err := s.Cart.Refresh(ctx); err != nil {
			m.logger.WarnContext(ctx, "cart hydration failed",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		wishlistErr = s.Wishlist.Load(ctx)
		return nil
	})
	g.Wait()
	return wishlistErr
}

// mergeGuestWishlist adds guest ids missing from the account, then removes
// the guest list. Ids that fail to merge stay in guest storage.
func (m *Manager) mergeGuestWishlist(ctx context.Context, s *Session, guestIDs []string) {
	missing := reconcile.MissingIDs(guestIDs, s.Wishlist.Snapshot().IDs)
	var failed []string
	for _, id := range missing {
		if err := s.Wishlist.Toggle(ctx, id, store.ToggleOptions{Silent: true}); err != nil {
			failed = append(failed, id)
		}
	}

	if len(failed) == 0 {
		if err := s.guest.RemoveItem(ctx, store.GuestWishlistKey); err != nil {
			m.logger.WarnContext(ctx, "clearing merged guest wishlist failed",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
	} else {
		m.logger.WarnContext(ctx, "guest wishlist partially merged",
			slog.String("session_id", s.ID),
			slog.Int("merged", len(missing)-len(failed)),
			slog.Int("failed", len(failed)))
		local := store.LocalStrategy{Storage: s.guest}
		if err := local.Add(ctx, "", failed); err != nil {
			m.logger.WarnContext(ctx, "saving unmerged guest wishlist failed",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
	}

	if len(missing) > len(failed) {
		if err := s.Wishlist.Load(ctx); err != nil {
			m.logger.WarnContext(ctx, "wishlist reload after merge failed", slog.String("error", err.Error()))
		}
	}
}

// Sweep evicts sessions idle longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.cfg.Now().Add(-m.cfg.TTL)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.cfg.Metrics.SetSessions(n)
	return removed
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.TTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	m.cfg.Metrics.SetSessions(n)
}

// contextKey is the type for context values to avoid collisions
type contextKey string

const sessionContextKey contextKey = "shopfront.session"

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}
