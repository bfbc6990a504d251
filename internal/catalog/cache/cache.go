package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/internal/catalog/pipeline"
	"github.com/aurelia-gems/storefront/pkg/logger"
)

// DefaultTTL matches the freshness window of the storefront views.
const DefaultTTL = 5 * time.Minute

// Snapshot is one consistent view of the catalog: the products, the
// category list derived from them, and when they were fetched.
type Snapshot struct {
	Products   []domain.Product
	Categories []string
	FetchedAt  time.Time
}

// Cache holds the last-fetched catalog snapshot with a TTL. It is safe
// for concurrent readers; all mutation goes through Refresh and
// Invalidate. A monotonically increasing fetch-sequence token rejects
// results of superseded fetches, so a slow response can never overwrite
// a newer snapshot.
type Cache struct {
	repo domain.CatalogRepository
	ttl  time.Duration
	now  func() time.Time

	mu           sync.RWMutex
	snap         Snapshot
	hasSnapshot  bool
	nextSeq      uint64
	installedSeq uint64
}

// New creates a cache over the given repository. A non-positive ttl
// falls back to DefaultTTL.
func New(repo domain.CatalogRepository, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Valid reports whether the current snapshot exists and is younger than
// the TTL.
func (c *Cache) Valid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked()
}

func (c *Cache) validLocked() bool {
	return c.hasSnapshot && c.now().Sub(c.snap.FetchedAt) < c.ttl
}

// Snapshot returns a valid snapshot, refreshing first when the cached one
// is missing or stale.
func (c *Cache) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.RLock()
	if c.validLocked() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		// A stale snapshot still beats an empty page while the store
		// is unreachable.
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.hasSnapshot {
			return c.snap, nil
		}
		return Snapshot{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, nil
}

// Refresh fetches the catalog wholesale and installs it as the new
// snapshot, unless a newer fetch has completed in the meantime.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	products, err := c.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh catalog: %w", err)
	}

	categories, err := c.repo.ListCategories(ctx)
	if err != nil || len(categories) == 0 {
		// The categories table is optional; fall back to deriving the
		// list from the products themselves.
		categories = pipeline.Categories(products)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.installedSeq {
		logger.Debug(ctx).
			Uint64("seq", seq).
			Uint64("installed", c.installedSeq).
			Msg("Discarding stale catalog fetch")
		return nil
	}
	c.installedSeq = seq
	c.snap = Snapshot{
		Products:   products,
		Categories: categories,
		FetchedAt:  c.now(),
	}
	c.hasSnapshot = true

	logger.Debug(ctx).
		Int("products", len(products)).
		Int("categories", len(categories)).
		Msg("Catalog snapshot refreshed")
	return nil
}

// Invalidate marks the snapshot stale so the next read refetches. Every
// fetch already in flight is fenced off: its result predates the
// invalidation and is discarded instead of installed. The snapshot itself
// is kept as a fallback for unreachable-store reads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.FetchedAt = time.Time{}
	c.installedSeq = c.nextSeq
}
