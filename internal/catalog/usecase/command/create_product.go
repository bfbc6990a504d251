package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/kafka"
	"github.com/aurelia-gems/storefront/pkg/logger"
)

// CreateProductCommand represents the command to add a product to the
// catalog. Price arrives as the display string and is normalized here,
// exactly once.
type CreateProductCommand struct {
	Title       string
	Price       string
	Description string
	Category    string
	Image       string
	Tags        []string
	InStock     *bool
	Featured    bool
}

// CreateProductHandler handles product creation.
type CreateProductHandler struct {
	repo      domain.CatalogRepository
	auth      Authorizer
	cache     CatalogCache
	publisher EventPublisher
}

// NewCreateProductHandler creates a new create product handler.
func NewCreateProductHandler(repo domain.CatalogRepository, auth Authorizer, cache CatalogCache, publisher EventPublisher) *CreateProductHandler {
	return &CreateProductHandler{repo: repo, auth: auth, cache: cache, publisher: publisher}
}

// Handle executes the create product command.
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if err := h.auth.Check(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAuthorized, err)
	}

	if strings.TrimSpace(cmd.Price) == "" {
		return nil, &domain.ValidationError{Field: "price", Message: "price is required"}
	}
	price, err := domain.ParsePrice(cmd.Price)
	if err != nil {
		return nil, err
	}

	inStock := true
	if cmd.InStock != nil {
		inStock = *cmd.InStock
	}

	now := time.Now()
	product := &domain.Product{
		ID:           uuid.NewString(),
		Title:        cmd.Title,
		Price:        price,
		Description:  cmd.Description,
		Category:     cmd.Category,
		Image:        cmd.Image,
		Tags:         cmd.Tags,
		InStock:      inStock,
		Featured:     cmd.Featured,
		DateAdded:    now,
		LastModified: now,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	refreshCatalog(h.cache)
	publishEvent(ctx, h.publisher, kafka.EventTypeProductCreated, product)

	return product, nil
}

// refreshCatalog invalidates the snapshot and re-fetches in the
// background, so readers never see the optimistic local state as final.
func refreshCatalog(cache CatalogCache) {
	if cache == nil {
		return
	}
	cache.Invalidate()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := cache.Refresh(ctx); err != nil {
			logger.Warn(ctx).Err(err).Msg("Background catalog refresh failed")
		}
	}()
}

// publishEvent emits a catalog change event, best effort.
func publishEvent(ctx context.Context, publisher EventPublisher, eventType string, product *domain.Product) {
	if publisher == nil {
		return
	}
	event := kafka.ProductEvent{
		ProductID: product.ID,
		Title:     product.Title,
		Category:  product.Category,
		Price:     product.Price,
	}
	if err := publisher.PublishProductEvent(ctx, eventType, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", eventType).
			Str("product_id", product.ID).
			Msg("Failed to publish catalog event")
	}
}
