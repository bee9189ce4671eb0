package models

import "github.com/shopspring/decimal"

// LineItem is one cart row, keyed by product id.
type LineItem struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// LineTotal is price times quantity, unrounded.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineItemFromProduct copies the display fields of p into a new line.
func LineItemFromProduct(p Product, qty int) LineItem {
	return LineItem{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Category: p.Category,
		Image:    p.Image,
		Quantity: qty,
	}
}

// CartSnapshot is handed to cart observers after each change.
type CartSnapshot struct {
	Items     []LineItem      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
