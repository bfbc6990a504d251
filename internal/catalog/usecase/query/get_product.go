package query

import (
	"context"
	"strings"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

// GetProductQuery represents the query for a single product.
type GetProductQuery struct {
	ID string
}

// GetProductHandler handles product detail lookups. It reads the cached
// snapshot first and only falls through to the repository on a miss, so
// a detail view straight after browsing costs no round-trip.
type GetProductHandler struct {
	catalog SnapshotProvider
	repo    domain.CatalogRepository
}

// NewGetProductHandler creates a new get product handler.
func NewGetProductHandler(catalog SnapshotProvider, repo domain.CatalogRepository) *GetProductHandler {
	return &GetProductHandler{catalog: catalog, repo: repo}
}

// Handle executes the get product query.
func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*domain.Product, error) {
	if strings.TrimSpace(q.ID) == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "product id is required"}
	}

	if snap, err := h.catalog.Snapshot(ctx); err == nil {
		for i := range snap.Products {
			if snap.Products[i].ID == q.ID {
				product := snap.Products[i]
				return &product, nil
			}
		}
	}

	return h.repo.FindByID(ctx, q.ID)
}
