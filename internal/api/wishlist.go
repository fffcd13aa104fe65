package api

import (
	"context"
	"net/http"

	"shopfront/internal/model"
)

// GetWishlist fetches the user's wishlist products.
func (c *Client) GetWishlist(ctx context.Context, token string) (*model.WishlistResponse, error) {
	var out model.WishlistResponse
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/wishlist",
		token:    token,
		resource: "wishlist",
		fallback: "Failed to fetch wishlist",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToWishlist adds productID to the user's wishlist.
func (c *Client) AddToWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error) {
	var out model.WishlistChangeResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/wishlist",
		token:    token,
		body:     model.AddToCartRequest{ProductID: productID},
		resource: "wishlist",
		fallback: "Failed to add to wishlist",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFromWishlist removes productID from the user's wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error) {
	var out model.WishlistChangeResponse
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/wishlist" + pathID(productID),
		token:    token,
		resource: "wishlist",
		fallback: "Failed to remove from wishlist",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
