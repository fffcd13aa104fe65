package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/model"
)

func TestProductQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters model.ProductFilters
		want    url.Values
	}{
		{
			name:    "defaults",
			filters: model.ProductFilters{},
			want:    url.Values{"limit": {"20"}, "page": {"1"}},
		},
		{
			name: "all filters",
			filters: model.ProductFilters{
				Page: 2, Limit: 10, Sort: "-price", MinPrice: 100, MaxPrice: 500,
				Categories: []string{"c1", "c2"}, Brands: []string{"b1"},
			},
			want: url.Values{
				"limit":        {"10"},
				"page":         {"2"},
				"sort":         {"-price"},
				"price[gte]":   {"100"},
				"price[lte]":   {"500"},
				"category[in]": {"c1", "c2"},
				"brand[in]":    {"b1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productQuery(tt.filters))
		})
	}
}

func TestProducts(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"results":1,"metadata":{"currentPage":1,"numberOfPages":3,"limit":20,"nextPage":2},
			"data":[{"_id":"p1","title":"Shirt","price":40,"quantity":7,"ratingsAverage":4.5,
			"category":{"_id":"c1","name":"Men's Fashion","slug":"men's-fashion"},"brand":{"_id":"b1","name":"DeFacto","slug":"defacto"}}]}`)
	})

	resp, err := c.Products(context.Background(), model.ProductFilters{Categories: []string{"c1"}})
	require.NoError(t, err)

	q, _ := url.ParseQuery((*calls)[0].query)
	assert.Equal(t, []string{"c1"}, q["category[in]"])
	assert.Empty(t, (*calls)[0].token)

	require.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Metadata.NumberOfPages)
	assert.Equal(t, "DeFacto", resp.Data[0].Brand.Name)
	assert.True(t, resp.Data[0].Price.Equal(model.NewMoney(40)))
}

func TestProduct_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{"statusMsg":"fail","message":"No product for this id 123"}`)
	})

	_, err := c.Product(context.Background(), "123")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, "No product for this id 123", model.UserMessage(err, ""))
}

func TestCatalogPaths(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/brands/b1" || r.URL.Path == "/api/v1/categories/c1" || r.URL.Path == "/api/v1/subcategories/s1" {
			writeJSON(w, 200, `{"data":{"_id":"x","name":"X","slug":"x"}}`)
			return
		}
		writeJSON(w, 200, `{"results":0,"data":[]}`)
	})
	ctx := context.Background()

	_, err := c.Categories(ctx)
	require.NoError(t, err)
	_, err = c.Category(ctx, "c1")
	require.NoError(t, err)
	_, err = c.CategorySubcategories(ctx, "c1")
	require.NoError(t, err)
	_, err = c.Subcategories(ctx)
	require.NoError(t, err)
	sub, err := c.Subcategory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "X", sub.Name)
	_, err = c.Brands(ctx)
	require.NoError(t, err)
	brand, err := c.Brand(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "x", brand.ID)

	var paths []string
	for _, call := range *calls {
		paths = append(paths, call.path)
	}
	assert.Equal(t, []string{
		"/api/v1/categories",
		"/api/v1/categories/c1",
		"/api/v1/categories/c1/subcategories",
		"/api/v1/subcategories",
		"/api/v1/subcategories/s1",
		"/api/v1/brands",
		"/api/v1/brands/b1",
	}, paths)
}
