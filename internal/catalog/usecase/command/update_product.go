package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/kafka"
)

// UpdateProductCommand represents the command to patch a product. Nil
// fields are left unchanged.
type UpdateProductCommand struct {
	ID          string
	Title       *string
	Price       *string
	Description *string
	Category    *string
	Image       *string
	Tags        []string
	InStock     *bool
	Featured    *bool
}

// UpdateProductHandler handles product updates.
type UpdateProductHandler struct {
	repo      domain.CatalogRepository
	auth      Authorizer
	cache     CatalogCache
	publisher EventPublisher
}

// NewUpdateProductHandler creates a new update product handler.
func NewUpdateProductHandler(repo domain.CatalogRepository, auth Authorizer, cache CatalogCache, publisher EventPublisher) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo, auth: auth, cache: cache, publisher: publisher}
}

// Handle executes the update product command.
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if err := h.auth.Check(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAuthorized, err)
	}

	if strings.TrimSpace(cmd.ID) == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "product id is required"}
	}

	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Title != nil {
		product.Title = *cmd.Title
	}
	if cmd.Price != nil {
		price, err := domain.ParsePrice(*cmd.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Category != nil {
		product.Category = *cmd.Category
	}
	if cmd.Image != nil {
		product.Image = *cmd.Image
	}
	if cmd.Tags != nil {
		product.Tags = cmd.Tags
	}
	if cmd.InStock != nil {
		product.InStock = *cmd.InStock
	}
	if cmd.Featured != nil {
		product.Featured = *cmd.Featured
	}
	product.LastModified = time.Now()

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	refreshCatalog(h.cache)
	publishEvent(ctx, h.publisher, kafka.EventTypeProductUpdated, product)

	return product, nil
}
