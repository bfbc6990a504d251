package query

import (
	"context"

	"github.com/aurelia-gems/storefront/internal/catalog/cache"
	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/internal/catalog/pipeline"
)

// DefaultPageSize matches the storefront grid.
const DefaultPageSize = 12

// SnapshotProvider yields a fresh catalog snapshot, refetching when the
// cached one is stale.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (cache.Snapshot, error)
}

// ListProductsQuery represents one catalog browse: search, filters, sort
// and page.
type ListProductsQuery struct {
	SearchTerm  string
	Category    string
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	Sort        string
	Page        int
	PageSize    int
}

// ListProductsResult is the paged outcome.
type ListProductsResult struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalItems int              `json:"total_items"`
	TotalPages int              `json:"total_pages"`
	StartIndex int              `json:"start_index"`
	EndIndex   int              `json:"end_index"`
}

// ListProductsHandler handles catalog browsing.
type ListProductsHandler struct {
	catalog SnapshotProvider
}

// NewListProductsHandler creates a new list products handler.
func NewListProductsHandler(catalog SnapshotProvider) *ListProductsHandler {
	return &ListProductsHandler{catalog: catalog}
}

// Handle executes the list products query: snapshot, then the pure
// filter/sort pipeline, then pagination. The pagination engine does not
// clamp pages, so the page default is applied here.
func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) (*ListProductsResult, error) {
	snap, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}

	filtered := pipeline.Apply(snap.Products, pipeline.Options{
		SearchTerm:      q.SearchTerm,
		Category:        q.Category,
		MinPrice:        q.MinPrice,
		MaxPrice:        q.MaxPrice,
		InStockOnly:     q.InStockOnly,
		Sort:            pipeline.SortKey(q.Sort),
		KnownCategories: snap.Categories,
	})

	page := pipeline.Paginate(filtered, q.PageSize, q.Page)

	return &ListProductsResult{
		Products:   page.Items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		StartIndex: page.StartIndex,
		EndIndex:   page.EndIndex,
	}, nil
}
