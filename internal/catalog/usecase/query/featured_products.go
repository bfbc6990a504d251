package query

import (
	"context"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

// FeaturedProductsQuery represents the home-page featured strip query.
type FeaturedProductsQuery struct {
	Limit int
}

// FeaturedProductsHandler handles featured product queries.
type FeaturedProductsHandler struct {
	catalog SnapshotProvider
}

// NewFeaturedProductsHandler creates a new featured products handler.
func NewFeaturedProductsHandler(catalog SnapshotProvider) *FeaturedProductsHandler {
	return &FeaturedProductsHandler{catalog: catalog}
}

// Handle executes the featured products query. Snapshot order is kept;
// the snapshot is already newest-first.
func (h *FeaturedProductsHandler) Handle(ctx context.Context, q FeaturedProductsQuery) ([]domain.Product, error) {
	snap, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit < 1 {
		limit = 6
	}

	featured := make([]domain.Product, 0, limit)
	for _, p := range snap.Products {
		if !p.Featured {
			continue
		}
		featured = append(featured, p)
		if len(featured) == limit {
			break
		}
	}
	return featured, nil
}
