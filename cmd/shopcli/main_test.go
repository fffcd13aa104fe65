package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/backend"
	"shopfront/internal/localstore"
	"shopfront/internal/model"
	"shopfront/internal/store"
	"shopfront/internal/validation"
)

func init() {
	disableColors()
}

func testToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": userID, "name": "Mona", "role": "user",
	}).SignedString([]byte("upstream-key"))
	require.NoError(t, err)
	return tok
}

// newTestApp builds an app over b with in-memory state and captured output.
func newTestApp(t *testing.T, b backend.Backend, state localstore.Storage) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := newApp(context.Background(), b, state, &printer{w: &out}, nil)
	require.NoError(t, err)
	return a, &out
}

func TestGuestWishlistPersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	state := localstore.NewMemory()

	a, out := newTestApp(t, &backend.Mock{}, state)
	require.NoError(t, a.run(ctx, "wishlist", []string{"toggle", "p1"}))
	assert.Contains(t, out.String(), store.MsgWishlistAdded)

	raw, ok, err := state.GetItem(ctx, store.GuestWishlistKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["p1"]`, raw)

	// A later invocation sees the same guest list.
	b, out := newTestApp(t, &backend.Mock{}, state)
	require.NoError(t, b.run(ctx, "wishlist", nil))
	assert.Contains(t, out.String(), "♥ p1")

	require.NoError(t, b.run(ctx, "wishlist", []string{"toggle", "p1"}))
	raw, _, _ = state.GetItem(ctx, store.GuestWishlistKey)
	assert.JSONEq(t, `[]`, raw)
}

func TestGuestCart(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, &backend.Mock{}, localstore.NewMemory())

	// Adding prompts for login without failing.
	require.NoError(t, a.run(ctx, "cart", []string{"add", "p1"}))
	assert.Contains(t, out.String(), store.MsgLoginToAddToCart)
	assert.Contains(t, out.String(), "shopcli login")

	assert.ErrorIs(t, a.run(ctx, "cart", nil), errNotLoggedIn)
	assert.ErrorIs(t, a.run(ctx, "orders", nil), errNotLoggedIn)
	assert.ErrorIs(t, a.run(ctx, "addresses", nil), errNotLoggedIn)
}

func TestLoginSavesToken(t *testing.T) {
	ctx := context.Background()
	state := localstore.NewMemory()
	token := testToken(t, "user-7")
	var gotUser string
	mock := &backend.Mock{
		SigninFunc: func(ctx context.Context, req model.SigninRequest) (*model.AuthResponse, error) {
			return &model.AuthResponse{Message: "success", User: model.User{Name: "Mona", Email: req.Email}, Token: token}, nil
		},
		UserOrdersFunc: func(ctx context.Context, tok, userID string) ([]model.Order, error) {
			gotUser = userID
			return []model.Order{{ID: "o1", PaymentMethodType: "cash", TotalOrderPrice: model.NewMoney(180)}}, nil
		},
	}

	a, out := newTestApp(t, mock, state)
	require.NoError(t, a.run(ctx, "login", []string{"-email", "mona@example.com", "-password", "Secret1!"}))
	assert.Contains(t, out.String(), "Welcome, Mona")

	saved, ok, err := state.GetItem(ctx, tokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token, saved)

	// The next run starts logged in.
	b, out := newTestApp(t, mock, state)
	assert.Equal(t, token, b.wishlist.Token())
	require.NoError(t, b.run(ctx, "orders", []string{"list"}))
	assert.Equal(t, "user-7", gotUser)
	assert.Contains(t, out.String(), "180.00 EGP")

	require.NoError(t, b.run(ctx, "logout", nil))
	_, ok, _ = state.GetItem(ctx, tokenKey)
	assert.False(t, ok)
	assert.Empty(t, b.token())
}

func TestLoginValidation(t *testing.T) {
	a, _ := newTestApp(t, &backend.Mock{}, localstore.NewMemory())

	err := a.run(context.Background(), "login", []string{"-email", "nope", "-password", "Secret1!"})

	var ve *validation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "email")
}

// loggedIn returns state holding a saved token.
func loggedIn(t *testing.T) localstore.Storage {
	t.Helper()
	state := localstore.NewMemory()
	require.NoError(t, state.SetItem(context.Background(), tokenKey, testToken(t, "user-7")))
	return state
}

func TestCartApply(t *testing.T) {
	ctx := context.Background()
	lines := map[string]int{"p1": 2}
	cart := func() *model.CartResponse {
		c := &model.Cart{ID: "cart1"}
		for _, id := range []string{"p1", "p2"} {
			if n, ok := lines[id]; ok {
				c.Products = append(c.Products, model.CartProduct{
					ID: "line-" + id, Count: n, Price: model.NewMoney(40), Product: model.RefID(id),
				})
			}
		}
		c.Recalculate()
		return &model.CartResponse{Status: "success", Data: c}
	}
	mock := &backend.Mock{
		GetCartFunc: func(ctx context.Context, token string) (*model.CartResponse, error) {
			return cart(), nil
		},
		AddToCartFunc: func(ctx context.Context, token, id string) (*model.CartResponse, error) {
			lines[id]++
			return cart(), nil
		},
		UpdateCartItemFunc: func(ctx context.Context, token, id string, n int) (*model.CartResponse, error) {
			lines[id] = n
			return cart(), nil
		},
		RemoveCartItemFunc: func(ctx context.Context, token, id string) (*model.CartResponse, error) {
			delete(lines, id)
			return cart(), nil
		},
	}

	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items":[{"productId":"p2","quantity":3}]}`), 0o600))

	a, out := newTestApp(t, mock, loggedIn(t))
	require.NoError(t, a.run(ctx, "cart", []string{"apply", path}))

	assert.Equal(t, map[string]int{"p2": 3}, lines)
	assert.Contains(t, out.String(), "1 added, 0 updated, 1 removed")
	assert.Contains(t, out.String(), "Total: 120.00 EGP")
}

func TestCardOrderUnknownAddress(t *testing.T) {
	mock := &backend.Mock{
		GetCartFunc: func(ctx context.Context, token string) (*model.CartResponse, error) {
			return &model.CartResponse{Data: &model.Cart{ID: "cart1", Products: []model.CartProduct{
				{Count: 1, Price: model.NewMoney(40), Product: model.RefID("p1")},
			}}}, nil
		},
		AddressesFunc: func(ctx context.Context, token string) ([]model.Address, error) {
			return []model.Address{{ID: "addr1", Details: "12 Nile St", Phone: "01012345678", City: "Cairo"}}, nil
		},
	}
	a, _ := newTestApp(t, mock, loggedIn(t))

	err := a.run(context.Background(), "orders", []string{"card", "-address", "addr9"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "address not found")
}

func TestCardOrderQuietPrintsURL(t *testing.T) {
	var gotReturn string
	var gotShip model.ShippingAddress
	mock := &backend.Mock{
		GetCartFunc: func(ctx context.Context, token string) (*model.CartResponse, error) {
			return &model.CartResponse{Data: &model.Cart{ID: "cart1", Products: []model.CartProduct{
				{Count: 1, Price: model.NewMoney(40), Product: model.RefID("p1")},
			}}}, nil
		},
		AddressesFunc: func(ctx context.Context, token string) ([]model.Address, error) {
			return []model.Address{{ID: "addr1", Details: "12 Nile St", Phone: "01012345678", City: "Cairo"}}, nil
		},
		CreateCheckoutSessionFunc: func(ctx context.Context, token, cartID, returnURL string, addr model.ShippingAddress) (*model.CheckoutSession, error) {
			gotReturn, gotShip = returnURL, addr
			cs := &model.CheckoutSession{Status: "success"}
			cs.Session.URL = "https://pay.example/cs_1"
			return cs, nil
		},
	}
	var out bytes.Buffer
	a, err := newApp(context.Background(), mock, loggedIn(t), &printer{w: &out, quiet: true}, nil)
	require.NoError(t, err)

	require.NoError(t, a.run(context.Background(), "orders", []string{"card", "-address", "addr1"}))

	assert.Equal(t, "https://pay.example/cs_1\n", out.String())
	assert.Equal(t, defaultReturnURL, gotReturn)
	assert.Equal(t, "Cairo", gotShip.City)
}

func TestEmptyCartCannotCheckout(t *testing.T) {
	a, _ := newTestApp(t, &backend.Mock{}, loggedIn(t))

	err := a.run(context.Background(), "orders", []string{"cash", "-address", "addr1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
