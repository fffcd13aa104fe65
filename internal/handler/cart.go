package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/reconcile"
	"shopfront/internal/store"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	// ShowToast set to false suppresses the cart summary notification.
	ShowToast *bool `json:"showToast,omitempty"`
}

type updateItemRequest struct {
	Count int `json:"count"`
}

// replaceCartRequest is the desired cart: every line the cart should hold.
type replaceCartRequest struct {
	Items []reconcile.DesiredItem `json:"items" validate:"dive"`
}

type replaceCartResponse struct {
	Added   int             `json:"added"`
	Updated int             `json:"updated"`
	Removed int             `json:"removed"`
	State   store.CartState `json:"state"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Cart.Refresh(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Cart.Snapshot())
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeForm(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	sess := currentSession(r)
	if err := sess.Cart.AddItem(r.Context(), req.ProductID, store.AddOptions{ShowToast: req.ShowToast}); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Cart.Snapshot())
}

// handleUpdateCartItem sets a line's quantity. Quantities below one are
// raised to one; removing a line is a DELETE.
func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeForm(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	sess := currentSession(r)
	productID := chi.URLParam(r, "productId")
	if err := sess.Cart.UpdateQuantity(r.Context(), productID, store.ClampQuantity(req.Count)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Cart.Snapshot())
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Cart.RemoveItem(r.Context(), chi.URLParam(r, "productId")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Cart.Snapshot())
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Cart.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Cart.Snapshot())
}

// handleReplaceCart makes the cart match the request body, issuing only the
// mutations the diff calls for.
func (h *Handler) handleReplaceCart(w http.ResponseWriter, r *http.Request) {
	var req replaceCartRequest
	if err := decodeForm(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	sess := currentSession(r)
	diff, err := sess.Cart.Replace(r.Context(), req.Items)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, replaceCartResponse{
		Added:   len(diff.ToAdd),
		Updated: len(diff.ToUpdate),
		Removed: len(diff.ToRemove),
		State:   sess.Cart.Snapshot(),
	})
}
