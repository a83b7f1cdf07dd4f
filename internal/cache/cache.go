// internal/cache/cache.go
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craftai/craftai-backend/internal/models"
)

// DefaultTTL is how long a cached listing snapshot stays valid.
const DefaultTTL = 5 * time.Minute

// MarketplaceKey caches the marketplace-wide published listing.
const MarketplaceKey = "marketplace_products"

type entry struct {
	products  []models.Product
	timestamp time.Time
}

// ProductCache is an in-process snapshot cache for product listings. It
// is advisory only: a miss always falls back to the store. Expired
// entries are not purged proactively, only superseded or ignored, which
// lets reads fall back to stale data when the store is unreachable.
type ProductCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration, now func() time.Time) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ProductCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
	}
}

// OwnerKey builds the cache key for an owner's listing, optionally
// narrowed to one status.
func OwnerKey(ownerID uuid.UUID, status models.ProductStatus) string {
	if status == "" {
		return ownerID.String() + "_all"
	}
	return ownerID.String() + "_" + string(status)
}

// Get returns the cached snapshot iff present and not expired.
func (c *ProductCache) Get(key string) ([]models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.timestamp) >= c.ttl {
		return nil, false
	}
	return e.products, true
}

// GetStale returns the cached snapshot regardless of age. Used as a
// fallback when the store is unreachable.
func (c *ProductCache) GetStale(key string) ([]models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.products, true
}

// Set unconditionally overwrites the snapshot for key.
func (c *ProductCache) Set(key string, products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{products: products, timestamp: c.now()}
}

// PrependForOwner records a just-created product: the owner's
// status-filtered snapshots are dropped, and the default snapshot is
// replaced by a fresh one with product at the front of whatever was
// still valid there.
func (c *ProductCache) PrependForOwner(ownerID uuid.UUID, product models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	defaultKey := ownerID.String() + "_all"

	var prior []models.Product
	if e, ok := c.entries[defaultKey]; ok && now.Sub(e.timestamp) < c.ttl {
		prior = e.products
	}

	prefix := ownerID.String() + "_"
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}

	updated := make([]models.Product, 0, len(prior)+1)
	updated = append(updated, product)
	updated = append(updated, prior...)
	c.entries[defaultKey] = entry{products: updated, timestamp: now}
}

// InvalidateOwner deletes every key scoped to ownerID, covering the
// default listing and each per-status listing.
func (c *ProductCache) InvalidateOwner(ownerID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := ownerID.String() + "_"
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}

// InvalidateAll clears the whole cache. Used after delete/publish since
// those affect the marketplace-wide listing too.
func (c *ProductCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len reports the number of entries, expired included.
func (c *ProductCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
