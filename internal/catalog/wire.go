//go:build wireinject
// +build wireinject

package catalog

import (
	"time"

	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/aurelia-gems/storefront/internal/catalog/cache"
	"github.com/aurelia-gems/storefront/internal/catalog/delivery/http"
	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/internal/catalog/repository"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/command"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/query"
	"github.com/aurelia-gems/storefront/internal/upload"
	nethttp "net/http"
)

// ProvideCatalogRepository provides the catalog repository wrapped in tracing
func ProvideCatalogRepository(db *gorm.DB) domain.CatalogRepository {
	return repository.NewTracedCatalogRepository(repository.NewGormCatalogRepository(db))
}

// ProvideCatalogCache provides the in-memory catalog snapshot cache
func ProvideCatalogCache(repo domain.CatalogRepository, ttl time.Duration) *cache.Cache {
	return cache.New(repo, ttl)
}

// Command Handlers Providers
func ProvideCreateProductHandler(repo domain.CatalogRepository, auth command.Authorizer, c *cache.Cache, publisher command.EventPublisher) *command.CreateProductHandler {
	return command.NewCreateProductHandler(repo, auth, c, publisher)
}

func ProvideUpdateProductHandler(repo domain.CatalogRepository, auth command.Authorizer, c *cache.Cache, publisher command.EventPublisher) *command.UpdateProductHandler {
	return command.NewUpdateProductHandler(repo, auth, c, publisher)
}

func ProvideDeleteProductHandler(repo domain.CatalogRepository, auth command.Authorizer, c *cache.Cache, publisher command.EventPublisher) *command.DeleteProductHandler {
	return command.NewDeleteProductHandler(repo, auth, c, publisher)
}

// Query Handlers Providers
func ProvideListProductsHandler(c *cache.Cache) *query.ListProductsHandler {
	return query.NewListProductsHandler(c)
}

func ProvideGetProductHandler(c *cache.Cache, repo domain.CatalogRepository) *query.GetProductHandler {
	return query.NewGetProductHandler(c, repo)
}

func ProvideGetFacetsHandler(c *cache.Cache) *query.GetFacetsHandler {
	return query.NewGetFacetsHandler(c)
}

func ProvideFeaturedProductsHandler(c *cache.Cache) *query.FeaturedProductsHandler {
	return query.NewFeaturedProductsHandler(c)
}

// CommandHandlers is a struct that holds all command handlers
type CommandHandlers struct {
	CreateHandler *command.CreateProductHandler
	UpdateHandler *command.UpdateProductHandler
	DeleteHandler *command.DeleteProductHandler
}

// QueryHandlers is a struct that holds all query handlers
type QueryHandlers struct {
	ListHandler     *query.ListProductsHandler
	GetHandler      *query.GetProductHandler
	FacetsHandler   *query.GetFacetsHandler
	FeaturedHandler *query.FeaturedProductsHandler
}

// ProvideCommandHandlers provides all command handlers
func ProvideCommandHandlers(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
) *CommandHandlers {
	return &CommandHandlers{
		CreateHandler: createHandler,
		UpdateHandler: updateHandler,
		DeleteHandler: deleteHandler,
	}
}

// ProvideQueryHandlers provides all query handlers
func ProvideQueryHandlers(
	listHandler *query.ListProductsHandler,
	getHandler *query.GetProductHandler,
	facetsHandler *query.GetFacetsHandler,
	featuredHandler *query.FeaturedProductsHandler,
) *QueryHandlers {
	return &QueryHandlers{
		ListHandler:     listHandler,
		GetHandler:      getHandler,
		FacetsHandler:   facetsHandler,
		FeaturedHandler: featuredHandler,
	}
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideCatalogRepository,
)

var CacheSet = wire.NewSet(
	ProvideCatalogCache,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateProductHandler,
	ProvideUpdateProductHandler,
	ProvideDeleteProductHandler,
	ProvideCommandHandlers,
)

var QueryHandlerSet = wire.NewSet(
	ProvideListProductsHandler,
	ProvideGetProductHandler,
	ProvideGetFacetsHandler,
	ProvideFeaturedProductsHandler,
	ProvideQueryHandlers,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CacheSet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeApp initializes the catalog HTTP handler and its cache with all dependencies
func InitializeApp(
	db *gorm.DB,
	ttl time.Duration,
	auth command.Authorizer,
	publisher command.EventPublisher,
	uploads *upload.Service,
	adminMW func(nethttp.HandlerFunc) nethttp.HandlerFunc,
) (*App, error) {
	wire.Build(
		AllHandlersSet,
		http.NewCatalogHandlerWithDI,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
