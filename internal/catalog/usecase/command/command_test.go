package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/kafka"
)

type fakeRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product

	insertErr error
	findErr   error
}

func newFakeRepo(products ...domain.Product) *fakeRepo {
	r := &fakeRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeRepo) ListProducts(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) ListCategories(context.Context) ([]string, error) { return nil, nil }

func (r *fakeRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *fakeRepo) Insert(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeRepo) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type allowAll struct{}

func (allowAll) Check(context.Context) error { return nil }

type denyAll struct{}

func (denyAll) Check(context.Context) error { return errors.New("no session") }

type fakeCache struct {
	mu          sync.Mutex
	invalidated int
	refreshed   chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{refreshed: make(chan struct{}, 8)}
}

func (c *fakeCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
}

func (c *fakeCache) Refresh(context.Context) error {
	c.refreshed <- struct{}{}
	return nil
}

func (c *fakeCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

func (c *fakeCache) waitRefresh(t *testing.T) {
	t.Helper()
	select {
	case <-c.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh never ran")
	}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) PublishProductEvent(_ context.Context, eventType string, _ kafka.ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func TestCreateProductHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with normalized price and stamps", func(t *testing.T) {
		repo := newFakeRepo()
		cache := newFakeCache()
		publisher := &fakePublisher{}
		h := NewCreateProductHandler(repo, allowAll{}, cache, publisher)

		product, err := h.Handle(ctx, CreateProductCommand{
			Title:    "Gold Ring",
			Price:    "$1,299.00",
			Category: "Rings",
			Tags:     []string{"gold"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, product.ID)
		assert.Equal(t, 1299.0, product.Price)
		assert.True(t, product.InStock, "stock defaults to available")
		assert.False(t, product.DateAdded.IsZero())
		assert.Equal(t, product.DateAdded, product.LastModified)

		stored, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gold Ring", stored.Title)

		cache.waitRefresh(t)
		assert.Equal(t, 1, cache.invalidations())
		assert.Equal(t, []string{kafka.EventTypeProductCreated}, publisher.published())
	})

	t.Run("explicit out of stock is preserved", func(t *testing.T) {
		repo := newFakeRepo()
		h := NewCreateProductHandler(repo, allowAll{}, nil, nil)

		inStock := false
		product, err := h.Handle(ctx, CreateProductCommand{
			Title: "Gold Ring", Price: "10", Category: "Rings", InStock: &inStock,
		})
		require.NoError(t, err)
		assert.False(t, product.InStock)
	})

	t.Run("rejects a missing price", func(t *testing.T) {
		h := NewCreateProductHandler(newFakeRepo(), allowAll{}, nil, nil)

		_, err := h.Handle(ctx, CreateProductCommand{Title: "Ring", Category: "Rings"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "price", verr.Field)
	})

	t.Run("rejects an unparsable price", func(t *testing.T) {
		h := NewCreateProductHandler(newFakeRepo(), allowAll{}, nil, nil)

		_, err := h.Handle(ctx, CreateProductCommand{Title: "Ring", Price: "call us", Category: "Rings"})
		assert.Error(t, err)
	})

	t.Run("requires an admin session", func(t *testing.T) {
		repo := newFakeRepo()
		h := NewCreateProductHandler(repo, denyAll{}, nil, nil)

		_, err := h.Handle(ctx, CreateProductCommand{Title: "Ring", Price: "10", Category: "Rings"})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
		count, _ := repo.Count(ctx)
		assert.Zero(t, count)
	})

	t.Run("store failure does not touch the cache", func(t *testing.T) {
		repo := newFakeRepo()
		repo.insertErr = errors.New("insert failed")
		cache := newFakeCache()
		h := NewCreateProductHandler(repo, allowAll{}, cache, nil)

		_, err := h.Handle(ctx, CreateProductCommand{Title: "Ring", Price: "10", Category: "Rings"})
		require.Error(t, err)
		assert.Zero(t, cache.invalidations())
	})
}

func TestUpdateProductHandler(t *testing.T) {
	ctx := context.Background()
	existing := domain.Product{
		ID: "p1", Title: "Gold Ring", Price: 1299, Category: "Rings",
		InStock: true, DateAdded: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("patches only the provided fields", func(t *testing.T) {
		repo := newFakeRepo(existing)
		cache := newFakeCache()
		publisher := &fakePublisher{}
		h := NewUpdateProductHandler(repo, allowAll{}, cache, publisher)

		price := "999"
		got, err := h.Handle(ctx, UpdateProductCommand{ID: "p1", Price: &price})
		require.NoError(t, err)
		assert.Equal(t, 999.0, got.Price)
		assert.Equal(t, "Gold Ring", got.Title)
		assert.Equal(t, existing.DateAdded, got.DateAdded)
		assert.True(t, got.LastModified.After(existing.DateAdded))

		cache.waitRefresh(t)
		assert.Equal(t, []string{kafka.EventTypeProductUpdated}, publisher.published())
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		h := NewUpdateProductHandler(newFakeRepo(existing), allowAll{}, nil, nil)

		_, err := h.Handle(ctx, UpdateProductCommand{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid patched price leaves the store untouched", func(t *testing.T) {
		repo := newFakeRepo(existing)
		h := NewUpdateProductHandler(repo, allowAll{}, nil, nil)

		price := "-10"
		_, err := h.Handle(ctx, UpdateProductCommand{ID: "p1", Price: &price})
		require.Error(t, err)

		stored, err := repo.FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 1299.0, stored.Price)
	})

	t.Run("requires an admin session", func(t *testing.T) {
		h := NewUpdateProductHandler(newFakeRepo(existing), denyAll{}, nil, nil)

		_, err := h.Handle(ctx, UpdateProductCommand{ID: "p1"})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})
}

func TestDeleteProductHandler(t *testing.T) {
	ctx := context.Background()
	existing := domain.Product{ID: "p1", Title: "Gold Ring", Price: 1299, Category: "Rings"}

	t.Run("deletes and publishes", func(t *testing.T) {
		repo := newFakeRepo(existing)
		cache := newFakeCache()
		publisher := &fakePublisher{}
		h := NewDeleteProductHandler(repo, allowAll{}, cache, publisher)

		require.NoError(t, h.Handle(ctx, DeleteProductCommand{ID: "p1"}))

		_, err := repo.FindByID(ctx, "p1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		cache.waitRefresh(t)
		assert.Equal(t, []string{kafka.EventTypeProductDeleted}, publisher.published())
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		h := NewDeleteProductHandler(newFakeRepo(existing), allowAll{}, nil, nil)

		err := h.Handle(ctx, DeleteProductCommand{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank id is rejected", func(t *testing.T) {
		h := NewDeleteProductHandler(newFakeRepo(existing), allowAll{}, nil, nil)

		var verr *domain.ValidationError
		assert.ErrorAs(t, h.Handle(ctx, DeleteProductCommand{ID: " "}), &verr)
	})
}
