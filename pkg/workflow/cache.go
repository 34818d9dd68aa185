package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/banyan-furniture/api/pkg/client"
)

// FurnitureFetcher loads one catalog piece by SKU. Satisfied by
// *client.Client via FetchFurnitureBySku.
type FurnitureFetcher interface {
	FetchFurnitureBySku(ctx context.Context, sku string) (*client.Furniture, error)
}

// cacheEntry holds one resolved SKU lookup. Failed lookups are cached too so
// a missing SKU doesn't trigger a request per render.
type cacheEntry struct {
	piece     *client.Furniture
	err       error
	fetchedAt time.Time
}

// FurnitureCache is a lazy per-SKU cache over the catalog API. Every view
// that needs furniture details shares one cache, so a SKU is fetched at most
// once until invalidated.
type FurnitureCache struct {
	fetcher FurnitureFetcher

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewFurnitureCache creates a cache backed by the given fetcher.
func NewFurnitureCache(fetcher FurnitureFetcher) *FurnitureCache {
	return &FurnitureCache{
		fetcher: fetcher,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the catalog piece for sku, fetching it on first use.
func (c *FurnitureCache) Get(ctx context.Context, sku string) (*client.Furniture, error) {
	c.mu.Lock()
	entry, ok := c.entries[sku]
	c.mu.Unlock()
	if ok {
		return entry.piece, entry.err
	}

	piece, err := c.fetcher.FetchFurnitureBySku(ctx, sku)

	c.mu.Lock()
	c.entries[sku] = &cacheEntry{piece: piece, err: err, fetchedAt: time.Now()}
	c.mu.Unlock()

	return piece, err
}

// Invalidate drops the cached entry for sku, forcing a refetch on next Get.
func (c *FurnitureCache) Invalidate(sku string) {
	c.mu.Lock()
	delete(c.entries, sku)
	c.mu.Unlock()
}

// InvalidateAll clears the whole cache.
func (c *FurnitureCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}
