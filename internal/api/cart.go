package api

import (
	"context"
	"net/http"
	"strconv"

	"shopfront/internal/model"
)

// GetCart fetches the user's cart with products populated.
func (c *Client) GetCart(ctx context.Context, token string) (*model.CartResponse, error) {
	var out model.CartResponse
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/cart",
		token:    token,
		resource: "cart",
		fallback: "Failed to fetch cart",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToCart adds one unit of productID. The reply's lines may hold bare
// product ids rather than embedded products.
func (c *Client) AddToCart(ctx context.Context, token, productID string) (*model.CartResponse, error) {
	var out model.CartResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/cart",
		token:    token,
		body:     model.AddToCartRequest{ProductID: productID},
		resource: "cart",
		fallback: "Failed to add to cart",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartItem sets the quantity of productID's line.
func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, count int) (*model.CartResponse, error) {
	var out model.CartResponse
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/cart" + pathID(productID),
		token:    token,
		body:     model.UpdateCountRequest{Count: strconv.Itoa(count)},
		resource: "cart",
		fallback: "Failed to update cart",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveCartItem drops productID's line.
func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) (*model.CartResponse, error) {
	var out model.CartResponse
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/cart" + pathID(productID),
		token:    token,
		resource: "cart",
		fallback: "Failed to remove item",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearCart deletes the whole cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/cart",
		token:    token,
		resource: "cart",
		fallback: "Failed to clear cart",
	}, nil)
}
