package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/backend"
	"shopfront/internal/localstore"
	"shopfront/internal/model"
	"shopfront/internal/store"
)

func apiToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"name": "Mona",
		"role": "user",
	}).SignedString([]byte("not-our-key"))
	require.NoError(t, err)
	return tok
}

// fakeClock is an adjustable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// accountBackend serves one account's cart and wishlist.
type accountBackend struct {
	mu       sync.Mutex
	wishlist []string
	added    []string
}

func (a *accountBackend) mock() *backend.Mock {
	return &backend.Mock{
		GetCartFunc: func(ctx context.Context, token string) (*model.CartResponse, error) {
			return &model.CartResponse{Status: "success", Data: &model.Cart{
				ID:       "cart1",
				Products: []model.CartProduct{{Count: 1, Price: model.NewMoney(40), Product: model.RefID("pA")}},
			}}, nil
		},
		GetWishlistFunc: func(ctx context.Context, token string) (*model.WishlistResponse, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			var products []model.Product
			for _, id := range a.wishlist {
				products = append(products, model.Product{ID: id})
			}
			return &model.WishlistResponse{Status: "success", Data: products}, nil
		},
		AddToWishlistFunc: func(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.added = append(a.added, productID)
			a.wishlist = append(a.wishlist, productID)
			return &model.WishlistChangeResponse{Status: "success", Data: a.wishlist}, nil
		},
	}
}

func newManager(t *testing.T, b backend.Backend, merge bool) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(Config{
		Backend:            b,
		TTL:                time.Hour,
		MergeGuestWishlist: merge,
		Now:                clock.Now,
	})
	return m, clock
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newManager(t, &backend.Mock{}, false)
	s := m.Create(context.Background(), "")

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User())
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get("unknown")
	assert.False(t, ok)
}

func TestManager_LoginHydratesStores(t *testing.T) {
	acct := &accountBackend{wishlist: []string{"p2"}}
	m, _ := newManager(t, acct.mock(), false)
	ctx := context.Background()
	s := m.Create(ctx, "")

	require.NoError(t, m.Login(ctx, s, apiToken(t, "user-1")))

	assert.True(t, s.LoggedIn())
	require.NotNil(t, s.User())
	assert.Equal(t, "user-1", s.User().UserID)
	assert.Equal(t, 1, s.Cart.Count())
	assert.Equal(t, []string{"p2"}, s.Wishlist.Snapshot().IDs)
}

func TestManager_LoginRejectsUndecodableToken(t *testing.T) {
	m, _ := newManager(t, &backend.Mock{}, false)
	s := m.Create(context.Background(), "")

	require.Error(t, m.Login(context.Background(), s, "not-a-jwt"))
	assert.False(t, s.LoggedIn())
}

func TestManager_GuestWishlistKeptWithoutMerge(t *testing.T) {
	acct := &accountBackend{wishlist: []string{"p2"}}
	m, _ := newManager(t, acct.mock(), false)
	ctx := context.Background()
	s := m.Create(ctx, "")

	require.NoError(t, s.Wishlist.Toggle(ctx, "p1", store.ToggleOptions{}))
	require.NoError(t, m.Login(ctx, s, apiToken(t, "user-1")))

	assert.Equal(t, []string{"p2"}, s.Wishlist.Snapshot().IDs)
	assert.Empty(t, acct.added)

	m.Logout(ctx, s)
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.Cart.Snapshot().Cart)
	assert.Equal(t, []string{"p1"}, s.Wishlist.Snapshot().IDs, "guest list returns after logout")
}

func TestManager_MergeGuestWishlistOnLogin(t *testing.T) {
	acct := &accountBackend{wishlist: []string{"p2"}}
	m, _ := newManager(t, acct.mock(), true)
	ctx := context.Background()
	s := m.Create(ctx, "")

	require.NoError(t, s.Wishlist.Toggle(ctx, "p1", store.ToggleOptions{}))
	require.NoError(t, s.Wishlist.Toggle(ctx, "p2", store.ToggleOptions{}))

	require.NoError(t, m.Login(ctx, s, apiToken(t, "user-1")))

	assert.Equal(t, []string{"p1"}, acct.added, "only ids missing from the account are added")
	assert.ElementsMatch(t, []string{"p1", "p2"}, s.Wishlist.Snapshot().IDs)

	ids, err := store.ReadGuestIDs(ctx, s.guest)
	require.NoError(t, err)
	assert.Empty(t, ids, "merged guest list is removed")
}

func TestManager_PartialMergeKeepsFailedGuestIDs(t *testing.T) {
	acct := &accountBackend{wishlist: []string{"p2"}}
	m := acct.mock()
	add := m.AddToWishlistFunc
	m.AddToWishlistFunc = func(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error) {
		if productID == "p3" {
			return nil, model.NewUpstreamError("", errors.New("reset"))
		}
		return add(ctx, token, productID)
	}
	mgr, _ := newManager(t, m, true)
	ctx := context.Background()
	s := mgr.Create(ctx, "")

	require.NoError(t, s.Wishlist.Toggle(ctx, "p1", store.ToggleOptions{}))
	require.NoError(t, s.Wishlist.Toggle(ctx, "p3", store.ToggleOptions{}))
	require.NoError(t, mgr.Login(ctx, s, apiToken(t, "user-1")))

	assert.Equal(t, []string{"p1"}, acct.added)
	ids, err := store.ReadGuestIDs(ctx, s.guest)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, ids, "unmerged ids stay in guest storage")
}

func TestManager_CreateReusesCookieIdentity(t *testing.T) {
	ctx := context.Background()
	guest := localstore.NewMemory()

	first := NewManager(Config{Backend: &backend.Mock{}, Guest: guest})
	s := first.Create(ctx, "")
	require.NoError(t, s.Wishlist.Toggle(ctx, "p1", store.ToggleOptions{}))

	restarted := NewManager(Config{Backend: &backend.Mock{}, Guest: guest})
	again := restarted.Create(ctx, s.ID)

	assert.Equal(t, s.ID, again.ID)
	assert.Equal(t, []string{"p1"}, again.Wishlist.Snapshot().IDs)
	assert.Same(t, again, restarted.Create(ctx, s.ID), "a live session is returned as is")
	assert.Equal(t, 1, restarted.Len())
}

func TestManager_SessionsExpire(t *testing.T) {
	m, clock := newManager(t, &backend.Mock{}, false)
	a := m.Create(context.Background(), "")
	b := m.Create(context.Background(), "")

	clock.Advance(40 * time.Minute)
	_, ok := m.Get(a.ID)
	require.True(t, ok)

	clock.Advance(40 * time.Minute)
	assert.Equal(t, 1, m.Sweep(), "b idle for 80m is evicted")
	_, ok = m.Get(b.ID)
	assert.False(t, ok)
	_, ok = m.Get(a.ID)
	assert.True(t, ok)

	clock.Advance(2 * time.Hour)
	_, ok = m.Get(a.ID)
	assert.False(t, ok, "expired sessions are not returned")
	assert.Equal(t, 0, m.Len())
}

func TestManager_LoginRequiredEvent(t *testing.T) {
	m, _ := newManager(t, &backend.Mock{}, false)
	s := m.Create(context.Background(), "")
	events, cancel := s.Feed.Subscribe()
	defer cancel()

	require.NoError(t, s.Cart.AddItem(context.Background(), "pA", store.AddOptions{}))

	var types []string
	for len(types) < 2 {
		select {
		case e := <-events:
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("got events %v, want notification and login_required", types)
		}
	}
	assert.ElementsMatch(t, []string{EventNotification, EventLoginRequired}, types)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	s := &Session{ID: "abc"}
	assert.Same(t, s, FromContext(WithSession(context.Background(), s)))
}
