package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productListResponse struct {
	models.Page
	Filter     models.Filter     `json:"filter"`
	PriceRange models.PriceRange `json:"priceRange"`
}

// GET /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	svc := h.catalog(c)
	products, err := svc.Products(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	f, err := filterFromQuery(c, catalog.DefaultFilter(products))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	listing, err := svc.List(c.Request.Context(), f, queryInt(c, "page", 1), queryInt(c, "page_size", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, productListResponse{
		Page:       listing,
		Filter:     f,
		PriceRange: catalog.PriceBounds(products),
	})
}

// filterFromQuery overlays the listing query parameters on base.
func filterFromQuery(c *gin.Context, base models.Filter) (models.Filter, error) {
	f := base
	if v := strings.TrimSpace(c.Query("category")); v != "" {
		f.Category = v
	}
	if v := strings.TrimSpace(c.Query("price_min")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, domain.ValidationError{Field: "price_min", Msg: "must be a non-negative number"}
		}
		f.PriceMin = d
	}
	if v := strings.TrimSpace(c.Query("price_max")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, domain.ValidationError{Field: "price_max", Msg: "must be a non-negative number"}
		}
		f.PriceMax = d
	}
	if v := strings.TrimSpace(c.Query("min_rating")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return f, domain.ValidationError{Field: "min_rating", Msg: "must be between 1 and 5"}
		}
		f.MinRating = &n
	}
	if v := c.Query("sort"); v != "" {
		f.Sort = catalog.ParseSortKey(v)
	}
	return f, nil
}

func queryInt(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return fallback
	}
	return n
}

// GET /api/products/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories := h.catalog(c).Categories(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"categories": append([]string{models.CategoryAll}, categories...)})
}

// GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog(c).Product(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/products/refresh
func (h *Handler) RefreshProducts(c *gin.Context) {
	svc := h.catalog(c)
	if err := svc.Refresh(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "catalog refreshed",
		"products":   len(svc.Cache.Products()),
		"categories": svc.Cache.Categories(),
	})
}

// POST /api/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req models.NewProduct
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.catalog(c).CreateProduct(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
