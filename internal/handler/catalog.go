package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/model"
)

// parseProductFilters reads listing filters from the query string.
// category and brand accept repeated keys or comma-separated ids.
func parseProductFilters(q url.Values) (model.ProductFilters, error) {
	var f model.ProductFilters
	ints := []struct {
		key string
		dst *int
	}{
		{"page", &f.Page},
		{"limit", &f.Limit},
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	}
	for _, p := range ints {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, model.NewValidationError(p.key + " must be a non-negative integer")
		}
		*p.dst = n
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return f, model.NewValidationError("minPrice must not exceed maxPrice")
	}
	f.Sort = q.Get("sort")
	f.Categories = splitIDs(q["category"])
	f.Brands = splitIDs(q["brand"])
	return f, nil
}

func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductFilters(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp, err := h.backend.Products(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.backend.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productView{
		Product:    p,
		InWishlist: currentSession(r).Wishlist.IsInWishlist(p.Identifier()),
	})
}

// productView is a product detail page: the product plus whether the
// visitor has favorited it.
type productView struct {
	Product    *model.Product `json:"product"`
	InWishlist bool           `json:"inWishlist"`
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.backend.Categories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.backend.Category(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCategorySubcategories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.backend.CategorySubcategories(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListSubcategories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.backend.Subcategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	resp, err := h.backend.Brands(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	b, err := h.backend.Brand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}
