package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// TracedCatalogRepository decorates another repository with OpenTelemetry
// spans. It satisfies domain.CatalogRepository itself, so it can be
// swapped in transparently.
type TracedCatalogRepository struct {
	inner domain.CatalogRepository
}

func NewTracedCatalogRepository(inner domain.CatalogRepository) *TracedCatalogRepository {
	return &TracedCatalogRepository{inner: inner}
}

func (r *TracedCatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.ListProducts")
	defer span.End()

	products, err := r.inner.ListProducts(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.products", len(products)))
	return products, nil
}

func (r *TracedCatalogRepository) ListCategories(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "repository.ListCategories")
	defer span.End()

	categories, err := r.inner.ListCategories(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.categories", len(categories)))
	return categories, nil
}

func (r *TracedCatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	product, err := r.inner.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("product.title", product.Title),
		attribute.String("product.category", product.Category),
	)
	return product, nil
}

func (r *TracedCatalogRepository) Insert(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Insert",
		trace.WithAttributes(
			attribute.String("product.id", product.ID),
			attribute.String("product.title", product.Title),
			attribute.String("product.category", product.Category),
			attribute.Float64("product.price", product.Price),
		),
	)
	defer span.End()

	if err := r.inner.Insert(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *TracedCatalogRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(attribute.String("product.id", product.ID)),
	)
	defer span.End()

	if err := r.inner.Update(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *TracedCatalogRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	if err := r.inner.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *TracedCatalogRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.Count")
	defer span.End()

	count, err := r.inner.Count(ctx)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int64("catalog.count", count))
	return count, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
