package models

import "github.com/shopspring/decimal"

// Product mirrors a catalog entry from the upstream API. Rating is nil when
// the upstream omitted it.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      *Rating         `json:"rating,omitempty"`
}

type Rating struct {
	Rate  decimal.Decimal `json:"rate"`
	Count int             `json:"count"`
}

// RateOrZero returns the rating rate, treating a missing rating as zero.
func (p Product) RateOrZero() decimal.Decimal {
	if p.Rating == nil {
		return decimal.Zero
	}
	return p.Rating.Rate
}

// NewProduct is the payload of the product creation form.
type NewProduct struct {
	Title       string          `json:"title" binding:"required,min=3"`
	Description string          `json:"description" binding:"required,min=10"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"required"`
	Image       string          `json:"image" binding:"required,url"`
}
