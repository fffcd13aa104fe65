package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"shopfront/internal/model"
)

// Catalog defaults used when a filter leaves page or limit unset.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// productQuery encodes filters the way the API expects: bracketed operator
// keys and one repeated key per category or brand.
func productQuery(f model.ProductFilters) url.Values {
	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	if f.MinPrice > 0 {
		q.Set("price[gte]", strconv.Itoa(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		q.Set("price[lte]", strconv.Itoa(f.MaxPrice))
	}
	for _, id := range f.Categories {
		q.Add("category[in]", id)
	}
	for _, id := range f.Brands {
		q.Add("brand[in]", id)
	}
	return q
}

// Products lists catalog products.
func (c *Client) Products(ctx context.Context, f model.ProductFilters) (*model.ListResponse[model.Product], error) {
	var out model.ListResponse[model.Product]
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/products",
		query:    productQuery(f),
		resource: "products",
		fallback: "Failed to load products",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id string) (*model.Product, error) {
	return getItem[model.Product](ctx, c, "/products"+pathID(id), "products", "Product not found")
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) (*model.ListResponse[model.Category], error) {
	return getList[model.Category](ctx, c, "/categories", "categories", "Failed to load categories")
}

// Category fetches one category.
func (c *Client) Category(ctx context.Context, id string) (*model.Category, error) {
	return getItem[model.Category](ctx, c, "/categories"+pathID(id), "categories", "Category not found")
}

// CategorySubcategories lists the subcategories of one category.
func (c *Client) CategorySubcategories(ctx context.Context, categoryID string) (*model.ListResponse[model.Subcategory], error) {
	return getList[model.Subcategory](ctx, c, "/categories"+pathID(categoryID)+"/subcategories", "subcategories", "Failed to load subcategories")
}

// Subcategories lists every subcategory.
func (c *Client) Subcategories(ctx context.Context) (*model.ListResponse[model.Subcategory], error) {
	return getList[model.Subcategory](ctx, c, "/subcategories", "subcategories", "Failed to load subcategories")
}

// Subcategory fetches one subcategory.
func (c *Client) Subcategory(ctx context.Context, id string) (*model.Subcategory, error) {
	return getItem[model.Subcategory](ctx, c, "/subcategories"+pathID(id), "subcategories", "Subcategory not found")
}

// Brands lists every brand.
func (c *Client) Brands(ctx context.Context) (*model.ListResponse[model.Brand], error) {
	return getList[model.Brand](ctx, c, "/brands", "brands", "Failed to load brands")
}

// Brand fetches one brand.
func (c *Client) Brand(ctx context.Context, id string) (*model.Brand, error) {
	return getItem[model.Brand](ctx, c, "/brands"+pathID(id), "brands", "Brand not found")
}

func getList[T any](ctx context.Context, c *Client, path, resource, fallback string) (*model.ListResponse[T], error) {
	var out model.ListResponse[T]
	if err := c.do(ctx, call{method: http.MethodGet, path: path, resource: resource, fallback: fallback}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getItem[T any](ctx context.Context, c *Client, path, resource, fallback string) (*T, error) {
	var out model.ItemResponse[T]
	if err := c.do(ctx, call{method: http.MethodGet, path: path, resource: resource, fallback: fallback}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
