// Package pricing derives the order summary of a cart: tax, shipping, promo
// discount and total.
package pricing

import (
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/domain/models"

	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate  = decimal.RequireFromString("0.10")
	DefaultShipping = decimal.Zero
	hundred         = decimal.NewFromInt(100)
)

// PromoTable is the static code lookup. It may be swapped at runtime when the
// configuration is reloaded.
type PromoTable struct {
	mu    sync.RWMutex
	codes map[string]models.Promo
}

func NewPromoTable(promos []models.Promo) *PromoTable {
	t := &PromoTable{}
	t.Replace(promos)
	return t
}

// DefaultPromos are the demo codes offered on the cart page.
func DefaultPromos() []models.Promo {
	return []models.Promo{
		{Code: "SAVE10", Kind: models.PromoPercentage, Value: decimal.NewFromInt(10), Label: "10% Off"},
		{Code: "SAVE20", Kind: models.PromoPercentage, Value: decimal.NewFromInt(20), Label: "20% Off"},
		{Code: "FREE50", Kind: models.PromoFixed, Value: decimal.NewFromInt(50), Label: "$50 Off"},
	}
}

func (t *PromoTable) Replace(promos []models.Promo) {
	codes := make(map[string]models.Promo, len(promos))
	for _, p := range promos {
		key := normalizeCode(p.Code)
		if key == "" {
			continue
		}
		p.Code = key
		codes[key] = p
	}
	t.mu.Lock()
	t.codes = codes
	t.mu.Unlock()
}

// Lookup matches code case-insensitively.
func (t *PromoTable) Lookup(code string) (models.Promo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.codes[normalizeCode(code)]
	return p, ok
}

func (t *PromoTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.codes)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Calculator holds the pricing configuration and the promo applied to one
// cart. Like the cart store it has a single owner.
type Calculator struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
	Promos   *PromoTable

	active *models.Promo
}

func NewCalculator(taxRate, shipping decimal.Decimal, promos *PromoTable) *Calculator {
	if promos == nil {
		promos = NewPromoTable(DefaultPromos())
	}
	return &Calculator{TaxRate: taxRate, Shipping: shipping, Promos: promos}
}

// ApplyPromoCode activates code, replacing any promo already applied.
func (c *Calculator) ApplyPromoCode(code string) (models.Promo, error) {
	p, ok := c.Promos.Lookup(code)
	if !ok {
		return models.Promo{}, domain.InvalidPromoError{Code: code}
	}
	c.active = &p
	return p, nil
}

func (c *Calculator) RemovePromoCode() {
	c.active = nil
}

// ActivePromo returns the applied promo, or nil.
func (c *Calculator) ActivePromo() *models.Promo {
	if c.active == nil {
		return nil
	}
	p := *c.active
	return &p
}

func (c *Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.TaxRate)
}

// Discount is the promo reduction, capped so the total never goes negative.
func (c *Calculator) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if c.active == nil {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch c.active.Kind {
	case models.PromoPercentage:
		d = subtotal.Mul(c.active.Value).Div(hundred)
	case models.PromoFixed:
		d = c.active.Value
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	ceiling := subtotal.Add(c.Tax(subtotal)).Add(c.Shipping)
	return decimal.Min(d, ceiling)
}

func (c *Calculator) Summarize(subtotal decimal.Decimal, itemCount int) models.Summary {
	tax := c.Tax(subtotal)
	discount := c.Discount(subtotal)
	return models.Summary{
		Subtotal:  subtotal,
		Tax:       tax,
		TaxRate:   c.TaxRate,
		Shipping:  c.Shipping,
		Discount:  discount,
		Total:     subtotal.Add(tax).Add(c.Shipping).Sub(discount),
		ItemCount: itemCount,
		Promo:     c.ActivePromo(),
	}
}
