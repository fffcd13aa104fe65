package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/validation"
)

// Address endpoints answer with the user's full address list, as the remote
// API does after every change.

func (h *Handler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.backend.Addresses(r.Context(), currentSession(r).Token())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, addrs)
}

func (h *Handler) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	var form validation.AddressForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}
	addrs, err := h.backend.AddAddress(r.Context(), currentSession(r).Token(), form.Request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, addrs)
}

func (h *Handler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	var form validation.AddressForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}
	addrs, err := h.backend.UpdateAddress(r.Context(), currentSession(r).Token(), chi.URLParam(r, "id"), form.Request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, addrs)
}

func (h *Handler) handleRemoveAddress(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.backend.RemoveAddress(r.Context(), currentSession(r).Token(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, addrs)
}
