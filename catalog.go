package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"storefront/internal/catalog"
	"storefront/internal/domain/models"
	"storefront/internal/fakestore"
	"storefront/internal/services"
	"storefront/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	listCategory  string
	listSort      string
	listPage      int
	listPageSize  int
	listMinRating int
	listPriceMin  string
	listPriceMax  string
)

// catalogCmd prints one page of the listing pipeline to stdout.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Fetch the catalog and print one listing page",
	Long: `Fetches products from the upstream catalog and runs them through the
filter, sort and pagination pipeline.

Example:
  storefront catalog --category electronics --sort price-desc --page 1`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&listCategory, "category", models.CategoryAll, "category to show, or \"all\"")
	catalogCmd.Flags().StringVar(&listSort, "sort", string(models.SortDefault), "default|price-asc|price-desc|name-asc|name-desc|rating-desc")
	catalogCmd.Flags().IntVar(&listPage, "page", 1, "page number (1-based)")
	catalogCmd.Flags().IntVar(&listPageSize, "page-size", 0, "items per page (defaults to the configured page size)")
	catalogCmd.Flags().IntVar(&listMinRating, "min-rating", 0, "minimum star rating 1-5 (0 disables)")
	catalogCmd.Flags().StringVar(&listPriceMin, "price-min", "", "lowest price to include")
	catalogCmd.Flags().StringVar(&listPriceMax, "price-max", "", "highest price to include")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	svc := services.CatalogService{
		Source:   fakestore.New(env.UpstreamBaseURL, env.UpstreamTimeout),
		Cache:    catalog.NewCache(),
		PageSize: env.PageSize,
	}
	products, err := svc.Products(cmd.Context())
	if err != nil {
		return err
	}

	f := catalog.DefaultFilter(products)
	f.Category = listCategory
	f.Sort = catalog.ParseSortKey(listSort)
	if listMinRating > 0 {
		if listMinRating > 5 {
			return fmt.Errorf("--min-rating must be between 1 and 5")
		}
		f.MinRating = &listMinRating
	}
	if listPriceMin != "" {
		if f.PriceMin, err = decimal.NewFromString(listPriceMin); err != nil {
			return fmt.Errorf("--price-min: %w", err)
		}
	}
	if listPriceMax != "" {
		if f.PriceMax, err = decimal.NewFromString(listPriceMax); err != nil {
			return fmt.Errorf("--price-max: %w", err)
		}
	}

	pageSize := listPageSize
	if pageSize < 1 {
		pageSize = svc.PageSize
	}
	page := catalog.Run(products, f, listPage, pageSize)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRICE\tRATING")
	for _, p := range page.Items {
		rating := "-"
		if p.Rating != nil {
			rating = fmt.Sprintf("%s (%d)", p.Rating.Rate.StringFixed(1), p.Rating.Count)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, utils.Truncate(p.Title, 48), p.Category, utils.FormatCurrency(p.Price), rating)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\npage %d of %d, %d matching products\n", page.Page, page.TotalPages, page.TotalItems)
	return nil
}
