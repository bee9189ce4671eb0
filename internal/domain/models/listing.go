package models

import "github.com/shopspring/decimal"

type SortKey string

const (
	SortDefault    SortKey = "default"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortRatingDesc SortKey = "rating-desc"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// Filter is the listing filter state. MinRating nil disables the rating filter.
type Filter struct {
	Category  string          `json:"category"`
	PriceMin  decimal.Decimal `json:"priceMin"`
	PriceMax  decimal.Decimal `json:"priceMax"`
	MinRating *int            `json:"minRating,omitempty"`
	Sort      SortKey         `json:"sort"`
}

// Page is one slice of the filtered listing plus pagination metadata.
type Page struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}
