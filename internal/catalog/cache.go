package catalog

import (
	"sync"
	"time"

	"storefront/internal/domain/models"
)

// Cache holds the last fetched product and category lists.
type Cache struct {
	mu         sync.RWMutex
	products   []models.Product
	created    []models.Product
	categories []string
	loadedAt   time.Time
}

func NewCache() *Cache {
	return &Cache{}
}

// SetProducts replaces the fetched list. Products added locally that the
// upstream does not return are kept at the end.
func (c *Cache) SetProducts(products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]models.Product, len(products), len(products)+len(c.created))
	copy(cp, products)
	seen := make(map[int64]struct{}, len(cp))
	for _, p := range cp {
		seen[p.ID] = struct{}{}
	}
	for _, p := range c.created {
		if _, ok := seen[p.ID]; !ok {
			cp = append(cp, p)
		}
	}
	c.products = cp
	c.loadedAt = time.Now()
}

func (c *Cache) SetCategories(categories []string) {
	cp := make([]string, len(categories))
	copy(cp, categories)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = cp
}

// Add appends a product, e.g. one created through the product form.
func (c *Cache) Add(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, p)
	c.created = append(c.created, p)
}

// Products returns a copy of the cached list in fetch order.
func (c *Cache) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Cache) Product(id int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Loaded reports whether a product list has been stored at least once.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loadedAt.IsZero()
}

func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
