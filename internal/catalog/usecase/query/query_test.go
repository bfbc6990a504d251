package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-gems/storefront/internal/catalog/cache"
	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

type fakeSnapshotProvider struct {
	snap cache.Snapshot
	err  error
}

func (p *fakeSnapshotProvider) Snapshot(context.Context) (cache.Snapshot, error) {
	return p.snap, p.err
}

type fakeFinder struct {
	domain.CatalogRepository
	product *domain.Product
	err     error
	calls   int
}

func (f *fakeFinder) FindByID(context.Context, string) (*domain.Product, error) {
	f.calls++
	return f.product, f.err
}

func storefrontSnapshot() cache.Snapshot {
	base := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	products := make([]domain.Product, 0, 30)
	categories := []string{"necklaces", "rings"}
	for i := 0; i < 30; i++ {
		p := domain.Product{
			ID:        string(rune('a' + i%26)) + "-product",
			Title:     "Product",
			Price:     float64(10 * (i + 1)),
			Category:  "Rings",
			InStock:   true,
			Featured:  i < 8,
			DateAdded: base.Add(-time.Duration(i) * time.Hour),
		}
		if i%2 == 1 {
			p.Category = "Necklaces"
		}
		products = append(products, p)
	}
	return cache.Snapshot{Products: products, Categories: categories, FetchedAt: time.Now()}
}

func TestListProductsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults page and page size", func(t *testing.T) {
		h := NewListProductsHandler(&fakeSnapshotProvider{snap: storefrontSnapshot()})

		res, err := h.Handle(ctx, ListProductsQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, DefaultPageSize, res.PageSize)
		assert.Len(t, res.Products, DefaultPageSize)
		assert.Equal(t, 30, res.TotalItems)
		assert.Equal(t, 3, res.TotalPages)
	})

	t.Run("filters before paginating", func(t *testing.T) {
		h := NewListProductsHandler(&fakeSnapshotProvider{snap: storefrontSnapshot()})

		res, err := h.Handle(ctx, ListProductsQuery{Category: "rings", PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 15, res.TotalItems)
		assert.Equal(t, 2, res.TotalPages)
		for _, p := range res.Products {
			assert.Equal(t, "Rings", p.Category)
		}
	})

	t.Run("snapshot categories feed the catch-all bucket", func(t *testing.T) {
		snap := storefrontSnapshot()
		snap.Products[0].Category = "Gift Cards"
		h := NewListProductsHandler(&fakeSnapshotProvider{snap: snap})

		res, err := h.Handle(ctx, ListProductsQuery{Category: "others"})
		require.NoError(t, err)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "Gift Cards", res.Products[0].Category)
	})

	t.Run("snapshot failure surfaces", func(t *testing.T) {
		h := NewListProductsHandler(&fakeSnapshotProvider{err: errors.New("store unreachable")})

		_, err := h.Handle(ctx, ListProductsQuery{})
		assert.Error(t, err)
	})
}

func TestGetProductHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("served from the snapshot without a store call", func(t *testing.T) {
		snap := storefrontSnapshot()
		finder := &fakeFinder{}
		h := NewGetProductHandler(&fakeSnapshotProvider{snap: snap}, finder)

		got, err := h.Handle(ctx, GetProductQuery{ID: snap.Products[3].ID})
		require.NoError(t, err)
		assert.Equal(t, snap.Products[3], *got)
		assert.Zero(t, finder.calls)
	})

	t.Run("snapshot miss falls through to the store", func(t *testing.T) {
		want := &domain.Product{ID: "fresh", Title: "Fresh"}
		finder := &fakeFinder{product: want}
		h := NewGetProductHandler(&fakeSnapshotProvider{snap: storefrontSnapshot()}, finder)

		got, err := h.Handle(ctx, GetProductQuery{ID: "fresh"})
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, finder.calls)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		finder := &fakeFinder{err: domain.ErrNotFound}
		h := NewGetProductHandler(&fakeSnapshotProvider{snap: storefrontSnapshot()}, finder)

		_, err := h.Handle(ctx, GetProductQuery{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank id is rejected", func(t *testing.T) {
		h := NewGetProductHandler(&fakeSnapshotProvider{}, &fakeFinder{})

		_, err := h.Handle(ctx, GetProductQuery{ID: "  "})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestGetFacetsHandler(t *testing.T) {
	ctx := context.Background()
	h := NewGetFacetsHandler(&fakeSnapshotProvider{snap: storefrontSnapshot()})

	facets, err := h.Handle(ctx, GetFacetsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"necklaces", "rings"}, facets.Categories)
	assert.Equal(t, 10.0, facets.MinPrice)
	assert.Equal(t, 300.0, facets.MaxPrice)
}

func TestFeaturedProductsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to six, keeping snapshot order", func(t *testing.T) {
		snap := storefrontSnapshot()
		h := NewFeaturedProductsHandler(&fakeSnapshotProvider{snap: snap})

		got, err := h.Handle(ctx, FeaturedProductsQuery{})
		require.NoError(t, err)
		require.Len(t, got, 6)
		for i, p := range got {
			assert.True(t, p.Featured)
			assert.Equal(t, snap.Products[i].ID, p.ID)
		}
	})

	t.Run("respects an explicit limit", func(t *testing.T) {
		h := NewFeaturedProductsHandler(&fakeSnapshotProvider{snap: storefrontSnapshot()})

		got, err := h.Handle(ctx, FeaturedProductsQuery{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}
