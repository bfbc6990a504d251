package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/kafka"
)

// DeleteProductCommand represents the command to remove a product.
type DeleteProductCommand struct {
	ID string
}

// DeleteProductHandler handles product deletion.
type DeleteProductHandler struct {
	repo      domain.CatalogRepository
	auth      Authorizer
	cache     CatalogCache
	publisher EventPublisher
}

// NewDeleteProductHandler creates a new delete product handler.
func NewDeleteProductHandler(repo domain.CatalogRepository, auth Authorizer, cache CatalogCache, publisher EventPublisher) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo, auth: auth, cache: cache, publisher: publisher}
}

// Handle executes the delete product command.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	if err := h.auth.Check(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotAuthorized, err)
	}

	if strings.TrimSpace(cmd.ID) == "" {
		return &domain.ValidationError{Field: "id", Message: "product id is required"}
	}

	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	refreshCatalog(h.cache)
	publishEvent(ctx, h.publisher, kafka.EventTypeProductDeleted, product)

	return nil
}
