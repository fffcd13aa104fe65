package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/store"
)

// handleGetWishlist returns the session's wishlist, loading it first so a
// guest sees ids persisted by earlier visits.
func (h *Handler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Wishlist.Load(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Wishlist.Snapshot())
}

func (h *Handler) handleToggleWishlist(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Wishlist.Toggle(r.Context(), chi.URLParam(r, "productId"), store.ToggleOptions{}); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Wishlist.Snapshot())
}

func (h *Handler) handleClearWishlist(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := sess.Wishlist.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Wishlist.Snapshot())
}
