package services

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/domain/models"
	"storefront/internal/notify"
	"storefront/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProductSource is the upstream catalog (fakestore.Client in production).
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
	FetchProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, in models.NewProduct) (models.Product, error)
}

// FallbackCategories is served when the categories endpoint is unreachable.
var FallbackCategories = []string{"electronics", "jewelery", "men's clothing", "women's clothing"}

// CatalogService loads the product catalog into the shared cache and answers
// listing queries from it.
type CatalogService struct {
	Source    ProductSource
	Cache     *catalog.Cache
	Notifier  notify.Notifier
	PageSize  int
	RequestID string
}

// Refresh fetches products and categories concurrently. A categories failure
// falls back to the static list; a products failure fails the refresh and
// leaves the previous cache untouched.
func (s CatalogService) Refresh(ctx context.Context) error {
	var (
		products   []models.Product
		categories []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.Source.FetchProducts(gctx)
		if err != nil {
			return err
		}
		products = out
		return nil
	})
	g.Go(func() error {
		out, err := s.Source.FetchCategories(gctx)
		if err != nil {
			utils.LogWarn(s.RequestID, "catalog", "fetch_categories", err)
			return nil
		}
		categories = out
		return nil
	})
	if err := g.Wait(); err != nil {
		utils.LogWarn(s.RequestID, "catalog", "refresh", err)
		s.notify(err.Error(), notify.KindError)
		return fmt.Errorf("refresh catalog: %w", err)
	}

	if len(categories) == 0 {
		categories = catalog.Categories(products)
	}
	s.Cache.SetProducts(products)
	s.Cache.SetCategories(categories)
	utils.LogEvent(s.RequestID, "catalog", "refresh", "catalog loaded",
		zap.Int("products", len(products)), zap.Int("categories", len(categories)))
	return nil
}

// EnsureLoaded refreshes the cache on first use.
func (s CatalogService) EnsureLoaded(ctx context.Context) error {
	if s.Cache.Loaded() {
		return nil
	}
	return s.Refresh(ctx)
}

func (s CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.Cache.Products(), nil
}

// List runs the filter/sort/paginate pipeline over the cached catalog.
func (s CatalogService) List(ctx context.Context, f models.Filter, page, pageSize int) (models.Page, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return models.Page{}, err
	}
	if pageSize < 1 {
		pageSize = s.PageSize
	}
	return catalog.Run(products, f, page, pageSize), nil
}

// Product answers from the cache and falls back to the upstream for ids the
// cache does not know.
func (s CatalogService) Product(ctx context.Context, id int64) (models.Product, error) {
	if id <= 0 {
		return models.Product{}, domain.ValidationError{Field: "id", Msg: "must be a positive integer"}
	}
	if p, ok := s.Cache.Product(id); ok {
		return p, nil
	}
	p, err := s.Source.FetchProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Categories never fails: when neither the cache nor the upstream has a list
// the fallback list is returned and an error toast is raised.
func (s CatalogService) Categories(ctx context.Context) []string {
	if cached := s.Cache.Categories(); len(cached) > 0 {
		return cached
	}
	out, err := s.Source.FetchCategories(ctx)
	if err != nil || len(out) == 0 {
		if err != nil {
			utils.LogWarn(s.RequestID, "catalog", "fetch_categories", err)
		}
		s.notify("Failed to load categories", notify.KindError)
		return append([]string(nil), FallbackCategories...)
	}
	s.Cache.SetCategories(out)
	return out
}

// CreateProduct validates the form, posts it upstream and appends the result
// to the local cache under the id the upstream assigned.
func (s CatalogService) CreateProduct(ctx context.Context, in models.NewProduct) (models.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Image = strings.TrimSpace(in.Image)
	if err := validateNewProduct(in); err != nil {
		return models.Product{}, err
	}

	p, err := s.Source.CreateProduct(ctx, in)
	if err != nil {
		utils.LogWarn(s.RequestID, "catalog", "create_product", err)
		s.notify("Failed to create product", notify.KindError)
		return models.Product{}, err
	}
	s.Cache.Add(p)
	utils.LogEvent(s.RequestID, "catalog", "create_product", "product created", zap.Int64("product_id", p.ID))
	s.notify("Product created successfully!", notify.KindSuccess)
	return p, nil
}

func validateNewProduct(in models.NewProduct) error {
	switch {
	case len([]rune(in.Title)) < 3:
		return domain.ValidationError{Field: "title", Msg: "must be at least 3 characters"}
	case len([]rune(in.Description)) < 10:
		return domain.ValidationError{Field: "description", Msg: "must be at least 10 characters"}
	case !in.Price.IsPositive():
		return domain.ValidationError{Field: "price", Msg: "must be greater than 0"}
	case in.Category == "":
		return domain.ValidationError{Field: "category", Msg: "is required"}
	case in.Image == "":
		return domain.ValidationError{Field: "image", Msg: "is required"}
	}
	return nil
}

func (s CatalogService) notify(message string, kind notify.Kind) {
	if s.Notifier != nil {
		s.Notifier.Notify(message, kind)
	}
}
