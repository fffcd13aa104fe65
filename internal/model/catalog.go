// Package model defines the storefront's view of the remote e-commerce API:
// catalog, cart, wishlist and account resources, plus the error type every
// remote call reports.
package model

import "time"

// Category is a top-level catalog category.
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
}

// Brand is a product brand.
type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// Product is a catalog product. Some endpoints return only a subset of the
// fields (cart lines embed a summary); absent fields stay zero.
type Product struct {
	ID                 string        `json:"_id"`
	AltID              string        `json:"id,omitempty"`
	Title              string        `json:"title"`
	Slug               string        `json:"slug,omitempty"`
	Description        string        `json:"description,omitempty"`
	Quantity           int           `json:"quantity"`
	Sold               int           `json:"sold,omitempty"`
	Price              Money         `json:"price"`
	PriceAfterDiscount *Money        `json:"priceAfterDiscount,omitempty"`
	ImageCover         string        `json:"imageCover,omitempty"`
	Images             []string      `json:"images,omitempty"`
	Category           *Category     `json:"category,omitempty"`
	Brand              *Brand        `json:"brand,omitempty"`
	Subcategory        []Subcategory `json:"subcategory,omitempty"`
	RatingsAverage     float64       `json:"ratingsAverage,omitempty"`
	RatingsQuantity    int           `json:"ratingsQuantity,omitempty"`
	CreatedAt          time.Time     `json:"createdAt,omitzero"`
	UpdatedAt          time.Time     `json:"updatedAt,omitzero"`
}

// Identifier returns the product id. The API sends both "_id" and "id";
// either may be missing depending on the endpoint.
func (p Product) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

// Metadata is the pagination block of list responses.
type Metadata struct {
	CurrentPage   int `json:"currentPage"`
	NumberOfPages int `json:"numberOfPages"`
	Limit         int `json:"limit"`
	NextPage      int `json:"nextPage,omitempty"`
	PrevPage      int `json:"prevPage,omitempty"`
}

// ListResponse is the envelope for every catalog list endpoint.
type ListResponse[T any] struct {
	Results  int       `json:"results"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Data     []T       `json:"data"`
}

// ItemResponse is the envelope for single-resource catalog endpoints.
type ItemResponse[T any] struct {
	Data T `json:"data"`
}

// ProductFilters narrows a product listing.
type ProductFilters struct {
	Page       int
	Limit      int
	Sort       string
	MinPrice   int
	MaxPrice   int
	Categories []string
	Brands     []string
}
