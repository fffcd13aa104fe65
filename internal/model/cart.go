package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductRef is a cart line's product. GET /cart embeds a product summary;
// the add and update endpoints sometimes return the bare id instead.
// A ProductRef re-encodes in the same shape it was decoded from.
type ProductRef struct {
	id      string
	product *Product
}

// RefID builds a bare-id reference.
func RefID(id string) ProductRef {
	return ProductRef{id: id}
}

// RefProduct builds an embedded-product reference.
func RefProduct(p Product) ProductRef {
	return ProductRef{product: &p}
}

// ID returns the referenced product id.
func (r ProductRef) ID() string {
	if r.product != nil {
		return r.product.Identifier()
	}
	return r.id
}

// Product returns the embedded product, or nil for a bare-id reference.
func (r ProductRef) Product() *Product {
	return r.product
}

// Populated reports whether the reference carries product data.
func (r ProductRef) Populated() bool {
	return r.product != nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.product != nil {
		return json.Marshal(r.product)
	}
	return json.Marshal(r.id)
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ProductRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("product reference: %w", err)
		}
		*r = ProductRef{id: id}
		return nil
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("product reference: %w", err)
	}
	*r = ProductRef{product: &p}
	return nil
}

// CartProduct is one cart line.
type CartProduct struct {
	ID      string     `json:"_id"`
	Count   int        `json:"count"`
	Price   Money      `json:"price"`
	Product ProductRef `json:"product"`
}

// Cart is a user's active cart as held by the remote API.
type Cart struct {
	ID         string        `json:"_id"`
	Owner      string        `json:"cartOwner"`
	Products   []CartProduct `json:"products"`
	TotalPrice Money         `json:"totalCartPrice"`
	CreatedAt  time.Time     `json:"createdAt,omitzero"`
	UpdatedAt  time.Time     `json:"updatedAt,omitzero"`
	Version    int           `json:"__v"`
}

// Clone returns a deep copy; optimistic updates mutate the copy so the
// original can be restored untouched.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	if c.Products != nil {
		out.Products = make([]CartProduct, len(c.Products))
		for i, line := range c.Products {
			if line.Product.product != nil {
				p := *line.Product.product
				line.Product.product = &p
			}
			out.Products[i] = line
		}
	}
	return &out
}

// Recalculate sets TotalPrice to the sum of unit price × count.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, line := range c.Products {
		total = total.Add(LineTotal(line.Price, line.Count))
	}
	c.TotalPrice = total
}

// Line returns the index of the line for productID, or -1.
func (c *Cart) Line(productID string) int {
	if c == nil {
		return -1
	}
	for i, line := range c.Products {
		if line.Product.ID() == productID {
			return i
		}
	}
	return -1
}

// ItemCount is the number of distinct lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}

// CartResponse is the envelope every cart endpoint returns.
type CartResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	NumOfCartItems int    `json:"numOfCartItems"`
	CartID         string `json:"cartId,omitempty"`
	Data           *Cart  `json:"data"`
}

// AddToCartRequest is the body of POST /cart and POST /wishlist.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
}

// UpdateCountRequest is the body of PUT /cart/{productId}. The API expects
// the count as a string.
type UpdateCountRequest struct {
	Count string `json:"count"`
}
