// Package backend defines the interface the storefront uses to reach the
// remote e-commerce API. *api.Client is the production implementation;
// Mock serves tests.
package backend

import (
	"context"

	"shopfront/internal/api"
	"shopfront/internal/model"
)

// Backend is the full remote API surface the storefront relies on.
//
// Authenticated methods take the caller's bearer token. Every error is a
// *model.APIError carrying a user-facing message.
type Backend interface {
	Catalog
	Cart
	Wishlist
	Account
	Auth
}

// Catalog is the public, unauthenticated product browsing API.
type Catalog interface {
	Products(ctx context.Context, f model.ProductFilters) (*model.ListResponse[model.Product], error)
	Product(ctx context.Context, id string) (*model.Product, error)
	Categories(ctx context.Context) (*model.ListResponse[model.Category], error)
	Category(ctx context.Context, id string) (*model.Category, error)
	CategorySubcategories(ctx context.Context, categoryID string) (*model.ListResponse[model.Subcategory], error)
	Subcategories(ctx context.Context) (*model.ListResponse[model.Subcategory], error)
	Subcategory(ctx context.Context, id string) (*model.Subcategory, error)
	Brands(ctx context.Context) (*model.ListResponse[model.Brand], error)
	Brand(ctx context.Context, id string) (*model.Brand, error)
}

// Cart is the per-user cart API. It satisfies store.CartService.
type Cart interface {
	GetCart(ctx context.Context, token string) (*model.CartResponse, error)
	AddToCart(ctx context.Context, token, productID string) (*model.CartResponse, error)
	UpdateCartItem(ctx context.Context, token, productID string, count int) (*model.CartResponse, error)
	RemoveCartItem(ctx context.Context, token, productID string) (*model.CartResponse, error)
	ClearCart(ctx context.Context, token string) error
}

// Wishlist is the per-user wishlist API. It satisfies store.WishlistService.
type Wishlist interface {
	GetWishlist(ctx context.Context, token string) (*model.WishlistResponse, error)
	AddToWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error)
	RemoveFromWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error)
}

// Account covers addresses and orders.
type Account interface {
	Addresses(ctx context.Context, token string) ([]model.Address, error)
	AddAddress(ctx context.Context, token string, req model.AddressRequest) ([]model.Address, error)
	UpdateAddress(ctx context.Context, token, id string, req model.AddressRequest) ([]model.Address, error)
	RemoveAddress(ctx context.Context, token, id string) ([]model.Address, error)
	UserOrders(ctx context.Context, token, userID string) ([]model.Order, error)
	CreateCashOrder(ctx context.Context, token, cartID, addressID string) (*model.Order, error)
	CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr model.ShippingAddress) (*model.CheckoutSession, error)
}

// Auth is account registration, sign-in and password reset.
type Auth interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error)
	Signin(ctx context.Context, req model.SigninRequest) (*model.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) (*model.StatusResponse, error)
	VerifyResetCode(ctx context.Context, code string) (*model.StatusResponse, error)
	ResetPassword(ctx context.Context, email, newPassword string) (*model.ResetPasswordResponse, error)
}

var _ Backend = (*api.Client)(nil)
