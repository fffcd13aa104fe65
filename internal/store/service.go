// Package store holds the client-side cart and wishlist stores. Each store
// owns a cached copy of server state, applies changes optimistically and
// rolls back on failure. Store actions are safe to call from many
// goroutines; network calls happen outside the state lock.
package store

import (
	"context"

	"shopfront/internal/model"
)

// CartService is the slice of the remote API the cart store needs.
type CartService interface {
	GetCart(ctx context.Context, token string) (*model.CartResponse, error)
	AddToCart(ctx context.Context, token, productID string) (*model.CartResponse, error)
	UpdateCartItem(ctx context.Context, token, productID string, count int) (*model.CartResponse, error)
	RemoveCartItem(ctx context.Context, token, productID string) (*model.CartResponse, error)
	ClearCart(ctx context.Context, token string) error
}

// WishlistService is the slice of the remote API the wishlist store needs.
type WishlistService interface {
	GetWishlist(ctx context.Context, token string) (*model.WishlistResponse, error)
	AddToWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error)
	RemoveFromWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error)
}
