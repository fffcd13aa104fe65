// Package reconcile provides diff logic between current and desired storefront
// state. The storefront uses it for desired-state cart replacement (fetch the
// current cart, diff, execute only the necessary mutations) and for merging a
// guest wishlist into an account's wishlist.
package reconcile

import "shopfront/internal/model"

// LineItemDiff describes the mutations needed to reconcile cart lines.
// Operations should be applied in order: Remove → Update → Add
// to prevent conflicts (e.g., updating a removed item).
type LineItemDiff struct {
	ToAdd    []ItemToAdd    // Products in desired but not current
	ToRemove []ItemToRemove // Products in current but not desired
	ToUpdate []ItemToUpdate // Products in both with different quantities
}

// ItemToAdd specifies a new line to add to the cart.
type ItemToAdd struct {
	ProductID string
	Quantity  int
}

// ItemToRemove specifies a line to remove from the cart.
type ItemToRemove struct {
	ProductID string
}

// ItemToUpdate specifies a quantity change for an existing line.
type ItemToUpdate struct {
	ProductID   string
	OldQuantity int // Current quantity (informational)
	NewQuantity int
}

// IsEmpty returns true if no line changes are needed.
func (d *LineItemDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0 && len(d.ToUpdate) == 0
}

// Len is the number of mutations in the diff.
func (d *LineItemDiff) Len() int {
	return len(d.ToAdd) + len(d.ToRemove) + len(d.ToUpdate)
}

// CurrentItem is a line in the current cart.
type CurrentItem struct {
	ProductID string
	Quantity  int
}

// DesiredItem is a line in the desired cart, as sent by a client.
type DesiredItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// CurrentItems flattens a cart into diffable lines. A nil cart has none.
func CurrentItems(c *model.Cart) []CurrentItem {
	if c == nil {
		return nil
	}
	items := make([]CurrentItem, 0, len(c.Products))
	for _, line := range c.Products {
		items = append(items, CurrentItem{ProductID: line.Product.ID(), Quantity: line.Count})
	}
	return items
}

// DiffLineItems computes the delta between current and desired lines.
// Matching is by product id. A desired quantity of zero or less means the
// line should not exist. When a product id repeats, the last entry wins.
// Results follow the input order so execution is deterministic.
func DiffLineItems(current []CurrentItem, desired []DesiredItem) *LineItemDiff {
	diff := &LineItemDiff{}

	currentByID := make(map[string]CurrentItem, len(current))
	for _, item := range current {
		currentByID[item.ProductID] = item
	}

	desiredByID := make(map[string]DesiredItem, len(desired))
	var order []string
	for _, item := range desired {
		if item.Quantity <= 0 {
			delete(desiredByID, item.ProductID)
			continue
		}
		if _, seen := desiredByID[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		desiredByID[item.ProductID] = item
	}

	// Find items to add or update
	for _, id := range order {
		want, ok := desiredByID[id]
		if !ok {
			continue
		}
		if have, exists := currentByID[id]; exists {
			if have.Quantity != want.Quantity {
				diff.ToUpdate = append(diff.ToUpdate, ItemToUpdate{
					ProductID:   id,
					OldQuantity: have.Quantity,
					NewQuantity: want.Quantity,
				})
			}
		} else {
			diff.ToAdd = append(diff.ToAdd, ItemToAdd{ProductID: id, Quantity: want.Quantity})
		}
	}

	// Find items to remove (in current but not in desired)
	for _, item := range current {
		if _, exists := desiredByID[item.ProductID]; !exists {
			diff.ToRemove = append(diff.ToRemove, ItemToRemove{ProductID: item.ProductID})
		}
	}

	return diff
}

// MissingIDs returns the ids in from that are absent in into, in from's
// order and without duplicates. Used to merge a guest wishlist into an
// account's wishlist without toggling off items already present.
func MissingIDs(from, into []string) []string {
	have := make(map[string]bool, len(into))
	for _, id := range into {
		have[id] = true
	}

	var missing []string
	for _, id := range from {
		if id == "" || have[id] {
			continue
		}
		have[id] = true
		missing = append(missing, id)
	}
	return missing
}
