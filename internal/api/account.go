package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"shopfront/internal/model"
)

// Addresses lists the user's saved addresses.
func (c *Client) Addresses(ctx context.Context, token string) ([]model.Address, error) {
	return c.addressCall(ctx, call{
		method:   http.MethodGet,
		path:     "/addresses",
		token:    token,
		fallback: "Failed to fetch addresses",
	})
}

// AddAddress saves a new address and returns the full updated list.
func (c *Client) AddAddress(ctx context.Context, token string, req model.AddressRequest) ([]model.Address, error) {
	return c.addressCall(ctx, call{
		method:   http.MethodPost,
		path:     "/addresses",
		token:    token,
		body:     req,
		fallback: "Failed to add address",
	})
}

// UpdateAddress replaces one saved address.
func (c *Client) UpdateAddress(ctx context.Context, token, id string, req model.AddressRequest) ([]model.Address, error) {
	return c.addressCall(ctx, call{
		method:   http.MethodPut,
		path:     "/addresses" + pathID(id),
		token:    token,
		body:     req,
		fallback: "Failed to update address",
	})
}

// RemoveAddress deletes one saved address and returns what remains.
func (c *Client) RemoveAddress(ctx context.Context, token, id string) ([]model.Address, error) {
	return c.addressCall(ctx, call{
		method:   http.MethodDelete,
		path:     "/addresses" + pathID(id),
		token:    token,
		fallback: "Failed to delete address",
	})
}

func (c *Client) addressCall(ctx context.Context, rc call) ([]model.Address, error) {
	rc.resource = "addresses"
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, rc, &out); err != nil {
		return nil, err
	}
	return decodeAddresses(out.Data, rc.fallback)
}

// decodeAddresses accepts the list form and the single-object form that
// PUT sometimes returns.
func decodeAddresses(raw json.RawMessage, fallback string) ([]model.Address, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []model.Address{}, nil
	}
	if raw[0] == '{' {
		var one model.Address
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, model.NewDecodeError(fallback, err)
		}
		return []model.Address{one}, nil
	}
	var list []model.Address
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, model.NewDecodeError(fallback, err)
	}
	return list, nil
}

// UserOrders lists the orders placed by userID. The endpoint answers with
// a bare array; a {data: [...]} envelope is accepted too.
func (c *Client) UserOrders(ctx context.Context, token, userID string) ([]model.Order, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/orders/user" + pathID(userID),
		token:    token,
		resource: "orders",
		fallback: "Failed to load orders",
	}, &raw)
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []model.Order{}, nil
	}
	if raw[0] == '[' {
		var orders []model.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, model.NewDecodeError("Failed to load orders", err)
		}
		return orders, nil
	}
	var env struct {
		Data []model.Order `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, model.NewDecodeError("Failed to load orders", err)
	}
	if env.Data == nil {
		return []model.Order{}, nil
	}
	return env.Data, nil
}

// CreateCashOrder places a cash-on-delivery order for cartID shipped to a
// saved address.
func (c *Client) CreateCashOrder(ctx context.Context, token, cartID, addressID string) (*model.Order, error) {
	var out model.OrderResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/orders" + pathID(cartID),
		token:    token,
		body:     model.CashOrderRequest{ShippingAddress: addressID},
		resource: "orders",
		fallback: "Failed to create order",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateCheckoutSession starts a hosted card payment for cartID. The payment
// page redirects to returnURL when done.
func (c *Client) CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr model.ShippingAddress) (*model.CheckoutSession, error) {
	var out model.CheckoutSession
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/orders/checkout-session" + pathID(cartID),
		query:    url.Values{"url": {returnURL}},
		token:    token,
		body:     model.CheckoutSessionRequest{ShippingAddress: addr},
		resource: "orders",
		fallback: "Failed to create checkout session",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
