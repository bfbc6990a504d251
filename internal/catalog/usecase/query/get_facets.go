package query

import (
	"context"

	"github.com/aurelia-gems/storefront/internal/catalog/pipeline"
)

// GetFacetsQuery represents the query for the filter panel data.
type GetFacetsQuery struct{}

// Facets is the data the filter panel needs: the category list plus the
// derived price bounds of the snapshot.
type Facets struct {
	Categories []string `json:"categories"`
	MinPrice   float64  `json:"min_price"`
	MaxPrice   float64  `json:"max_price"`
}

// GetFacetsHandler handles facet queries.
type GetFacetsHandler struct {
	catalog SnapshotProvider
}

// NewGetFacetsHandler creates a new facets handler.
func NewGetFacetsHandler(catalog SnapshotProvider) *GetFacetsHandler {
	return &GetFacetsHandler{catalog: catalog}
}

// Handle executes the facets query.
func (h *GetFacetsHandler) Handle(ctx context.Context, _ GetFacetsQuery) (*Facets, error) {
	snap, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	min, max := pipeline.PriceBounds(snap.Products)
	return &Facets{
		Categories: snap.Categories,
		MinPrice:   min,
		MaxPrice:   max,
	}, nil
}
