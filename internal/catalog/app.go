package catalog

import (
	"github.com/aurelia-gems/storefront/internal/catalog/cache"
	"github.com/aurelia-gems/storefront/internal/catalog/delivery/http"
)

// App bundles the wired catalog components the binary needs.
type App struct {
	Handler *http.CatalogHandler
	Cache   *cache.Cache
}
