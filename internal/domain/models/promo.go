package models

import "github.com/shopspring/decimal"

type PromoKind string

const (
	PromoPercentage PromoKind = "percentage"
	PromoFixed      PromoKind = "fixed"
)

type Promo struct {
	Code  string          `json:"code"`
	Kind  PromoKind       `json:"kind"`
	Value decimal.Decimal `json:"value"`
	Label string          `json:"label,omitempty"`
}

// Summary is the order summary shown next to the cart.
type Summary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Shipping  decimal.Decimal `json:"shipping"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	Promo     *Promo          `json:"promo,omitempty"`
}
