package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	// Swagger UI
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ListProducts godoc
// @Summary List catalog products
// @Description List products with search, category, price and stock filters, sorting and pagination
// @Tags Catalog
// @Produce json
// @Param search query string false "Search term matched against title, description, category and tags"
// @Param category query string false "Category filter ('all' disables, 'others' matches unknown categories)"
// @Param min_price query number false "Minimum price (inclusive)"
// @Param max_price query number false "Maximum price (inclusive)"
// @Param in_stock query bool false "Only in-stock products"
// @Param sort query string false "Sort key (date-desc, date-asc, price-asc, price-desc, title-asc, title-desc)"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Items per page (default 12)"
// @Success 200 {object} object{success=bool,data=object{items=array,total_items=int,total_pages=int}}
// @Failure 503 {object} object{success=bool,error=string,retryable=bool}
// @Router /api/products [get]
func (h *CatalogHandler) ListProductsDoc() {}

// GetFacets godoc
// @Summary Get catalog facets
// @Description Get available categories and the price range of the catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} object{success=bool,data=object{categories=array,min_price=number,max_price=number}}
// @Router /api/products/facets [get]
func (h *CatalogHandler) GetFacetsDoc() {}

// FeaturedProducts godoc
// @Summary List featured products
// @Description List products flagged as featured, newest first
// @Tags Catalog
// @Produce json
// @Param limit query int false "Maximum number of products (default 6)"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/products/featured [get]
func (h *CatalogHandler) FeaturedProductsDoc() {}

// GetProduct godoc
// @Summary Get product by ID
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{id} [get]
func (h *CatalogHandler) GetProductDoc() {}

// CreateProduct godoc
// @Summary Create a product (admin)
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,price=string,description=string,category=string,image=string,tags=array,in_stock=bool,featured=bool} true "Product data"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/products [post]
func (h *CatalogHandler) CreateProductDoc() {}

// UpdateProduct godoc
// @Summary Update a product (admin)
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body object{title=string,price=string,description=string,category=string,image=string,tags=array,in_stock=bool,featured=bool} true "Fields to update"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{id} [put]
func (h *CatalogHandler) UpdateProductDoc() {}

// DeleteProduct godoc
// @Summary Delete a product (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{id} [delete]
func (h *CatalogHandler) DeleteProductDoc() {}

// UploadImage godoc
// @Summary Upload a product image (admin)
// @Description Upload a JPEG, PNG or WebP image up to 5 MB
// @Tags Admin
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image file"
// @Success 201 {object} object{success=bool,data=object{url=string}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/products/image [post]
func (h *CatalogHandler) UploadImageDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func (h *CatalogHandler) HealthCheckDoc() {}
