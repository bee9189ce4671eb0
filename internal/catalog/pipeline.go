// Package catalog holds the product cache and the listing pipeline.
package catalog

import (
	"slices"
	"strings"

	"storefront/internal/domain/models"

	"github.com/shopspring/decimal"
)

const DefaultPageSize = 10

// Run filters, sorts and paginates products. It never mutates its inputs and
// returns the same page for the same arguments.
func Run(products []models.Product, f models.Filter, page, pageSize int) models.Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	filtered := Filter(products, f)
	Sort(filtered, f.Sort)

	total := len(filtered)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	// page <= totalPages keeps (page-1)*pageSize below total, so it cannot overflow.
	items := []models.Product{}
	if total > 0 && page <= totalPages {
		start := (page - 1) * pageSize
		end := start + min(pageSize, total-start)
		items = filtered[start:end]
	}

	return models.Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Filter applies category, price and rating filters, in that order, into a
// freshly allocated slice.
func Filter(products []models.Product, f models.Filter) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !matchCategory(p, f.Category) {
			continue
		}
		if p.Price.LessThan(f.PriceMin) || p.Price.GreaterThan(f.PriceMax) {
			continue
		}
		if f.MinRating != nil {
			if p.Rating == nil || p.Rating.Rate.LessThan(decimal.NewFromInt(int64(*f.MinRating))) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func matchCategory(p models.Product, category string) bool {
	return category == "" || category == models.CategoryAll || p.Category == category
}

// Sort stable-sorts products in place. Unknown keys keep the fetch order.
func Sort(products []models.Product, key models.SortKey) {
	var cmp func(a, b models.Product) int
	switch key {
	case models.SortPriceAsc:
		cmp = func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case models.SortPriceDesc:
		cmp = func(a, b models.Product) int { return b.Price.Cmp(a.Price) }
	case models.SortNameAsc:
		cmp = func(a, b models.Product) int { return strings.Compare(a.Title, b.Title) }
	case models.SortNameDesc:
		cmp = func(a, b models.Product) int { return strings.Compare(b.Title, a.Title) }
	case models.SortRatingDesc:
		cmp = func(a, b models.Product) int { return b.RateOrZero().Cmp(a.RateOrZero()) }
	default:
		return
	}
	slices.SortStableFunc(products, cmp)
}

// ParseSortKey maps a query value to a SortKey, falling back to SortDefault.
func ParseSortKey(raw string) models.SortKey {
	switch k := models.SortKey(strings.TrimSpace(raw)); k {
	case models.SortPriceAsc, models.SortPriceDesc,
		models.SortNameAsc, models.SortNameDesc,
		models.SortRatingDesc:
		return k
	default:
		return models.SortDefault
	}
}

// Categories lists the distinct categories in first-seen order.
func Categories(products []models.Product) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range products {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// PriceBounds returns the lowest and highest price, zero for an empty list.
func PriceBounds(products []models.Product) models.PriceRange {
	if len(products) == 0 {
		return models.PriceRange{Min: decimal.Zero, Max: decimal.Zero}
	}
	r := models.PriceRange{Min: products[0].Price, Max: products[0].Price}
	for _, p := range products[1:] {
		r.Min = decimal.Min(r.Min, p.Price)
		r.Max = decimal.Max(r.Max, p.Price)
	}
	return r
}

// DefaultFilter shows every product of the list with the default ordering.
func DefaultFilter(products []models.Product) models.Filter {
	bounds := PriceBounds(products)
	return models.Filter{
		Category: models.CategoryAll,
		PriceMin: decimal.Zero,
		PriceMax: bounds.Max,
		Sort:     models.SortDefault,
	}
}
