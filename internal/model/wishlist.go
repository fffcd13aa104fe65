package model

// WishlistResponse is the body of GET /wishlist.
type WishlistResponse struct {
	Status string    `json:"status"`
	Count  *int      `json:"count,omitempty"`
	Data   []Product `json:"data"`
}

// WishlistChangeResponse is the body of POST /wishlist and
// DELETE /wishlist/{id}. Data holds the resulting id list.
type WishlistChangeResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Data    []string `json:"data"`
}

// WishlistIDs maps products to their ids, preserving order.
func WishlistIDs(products []Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.Identifier())
	}
	return ids
}
