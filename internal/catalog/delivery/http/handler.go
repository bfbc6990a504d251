package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/command"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/query"
	"github.com/aurelia-gems/storefront/internal/upload"
	"github.com/aurelia-gems/storefront/pkg/logger"
)

// CatalogHandler exposes the catalog over HTTP. Reads are public; every
// mutation goes through the admin middleware.
type CatalogHandler struct {
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler
	deleteHandler *command.DeleteProductHandler

	listHandler     *query.ListProductsHandler
	getHandler      *query.GetProductHandler
	facetsHandler   *query.GetFacetsHandler
	featuredHandler *query.FeaturedProductsHandler

	uploads *upload.Service
	repo    domain.CatalogRepository
	adminMW func(http.HandlerFunc) http.HandlerFunc

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
	totalProducts  prometheus.Gauge
}

// NewCatalogHandler wires the catalog handler from its use cases.
func NewCatalogHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	listHandler *query.ListProductsHandler,
	getHandler *query.GetProductHandler,
	facetsHandler *query.GetFacetsHandler,
	featuredHandler *query.FeaturedProductsHandler,
	uploads *upload.Service,
	repo domain.CatalogRepository,
	adminMW func(http.HandlerFunc) http.HandlerFunc,
) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Total number of requests to the storefront service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_request_duration_seconds",
			Help:    "Duration of storefront requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "storefront_request_duration_summary",
			Help: "Summary of request durations with client-side quantiles",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)

	totalProducts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_total_products",
			Help: "Total number of products in the catalog",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(requestSummary)
	prometheus.MustRegister(totalProducts)

	return &CatalogHandler{
		createHandler:   createHandler,
		updateHandler:   updateHandler,
		deleteHandler:   deleteHandler,
		listHandler:     listHandler,
		getHandler:      getHandler,
		facetsHandler:   facetsHandler,
		featuredHandler: featuredHandler,
		uploads:         uploads,
		repo:            repo,
		adminMW:         adminMW,
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
		requestSummary:  requestSummary,
		totalProducts:   totalProducts,
	}
}

// NewCatalogHandlerWithDI creates a new catalog handler using dependency injection
// This is used by Wire for automatic dependency injection
func NewCatalogHandlerWithDI(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	listHandler *query.ListProductsHandler,
	getHandler *query.GetProductHandler,
	facetsHandler *query.GetFacetsHandler,
	featuredHandler *query.FeaturedProductsHandler,
	uploads *upload.Service,
	repo domain.CatalogRepository,
	adminMW func(http.HandlerFunc) http.HandlerFunc,
) *CatalogHandler {
	return NewCatalogHandler(
		createHandler, updateHandler, deleteHandler,
		listHandler, getHandler, facetsHandler, featuredHandler,
		uploads, repo, adminMW,
	)
}

// Response is the uniform envelope of every endpoint.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics.
func (h *CatalogHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/facets", h.metricsMiddleware("/api/products/facets", h.GetFacets)).Methods("GET")
	router.HandleFunc("/api/products/featured", h.metricsMiddleware("/api/products/featured", h.GetFeatured)).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods("GET")

	// Admin routes
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.adminMW(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/image", h.metricsMiddleware("/api/products/image", h.adminMW(h.UploadImage))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.adminMW(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.adminMW(h.DeleteProduct))).Methods("DELETE")
}

type productRequest struct {
	Title       *string  `json:"title"`
	Price       *string  `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Tags        []string `json:"tags"`
	InStock     *bool    `json:"in_stock"`
	Featured    *bool    `json:"featured"`
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := query.ListProductsQuery{
		SearchTerm:  params.Get("search"),
		Category:    params.Get("category"),
		InStockOnly: params.Get("in_stock") == "true",
		Sort:        params.Get("sort"),
	}
	q.Page, _ = strconv.Atoi(params.Get("page"))
	q.PageSize, _ = strconv.Atoi(params.Get("page_size"))
	q.MinPrice = parsePriceParam(params.Get("min_price"))
	q.MaxPrice = parsePriceParam(params.Get("max_price"))

	result, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	product, err := h.getHandler.Handle(r.Context(), query.GetProductQuery{ID: vars["id"]})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    product,
	})
}

// GetFacets handles GET /api/products/facets
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.facetsHandler.Handle(r.Context(), query.GetFacetsQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get facets")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    facets,
	})
}

// GetFeatured handles GET /api/products/featured
func (h *CatalogHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.featuredHandler.Handle(r.Context(), query.FeaturedProductsQuery{Limit: limit})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get featured products")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    products,
	})
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.CreateProductCommand{
		Tags:     req.Tags,
		InStock:  req.InStock,
		Featured: req.Featured != nil && *req.Featured,
	}
	if req.Title != nil {
		cmd.Title = *req.Title
	}
	if req.Price != nil {
		cmd.Price = *req.Price
	}
	if req.Description != nil {
		cmd.Description = *req.Description
	}
	if req.Category != nil {
		cmd.Category = *req.Category
	}
	if req.Image != nil {
		cmd.Image = *req.Image
	}

	product, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create product")
		respondError(w, err)
		return
	}

	h.updateProductsMetric(r)

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.UpdateProductCommand{
		ID:          vars["id"],
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
		Tags:        req.Tags,
		InStock:     req.InStock,
		Featured:    req.Featured,
	}

	product, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to update product")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{ID: vars["id"]}); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to delete product")
		respondError(w, err)
		return
	}

	h.updateProductsMetric(r)

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// UploadImage handles POST /api/products/image
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxFileSize+4096)

	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid multipart request (is the file over 5 MB?)",
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Missing image field",
		})
		return
	}
	defer file.Close()

	// Fast-fail before any storage call.
	if err := upload.Validate(header.Size, header.Header.Get("Content-Type")); err != nil {
		respondError(w, err)
		return
	}

	url, err := h.uploads.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to upload image")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Image uploaded successfully",
		Data:    map[string]string{"url": url},
	})
}

// RegisterHealthCheck exposes /health backed by a database ping.
func (h *CatalogHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Storefront service is healthy",
		})
	}).Methods("GET")
}

// updateProductsMetric refreshes the catalog size gauge after mutations.
func (h *CatalogHandler) updateProductsMetric(r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err == nil {
		h.totalProducts.Set(float64(count))
	}
}

func parsePriceParam(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

// respondError maps domain errors onto status codes: validation 400,
// not-found 404, not-authorized 403, transient 503 (flagged retryable).
func respondError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError

	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
	case errors.Is(err, domain.ErrNotAuthorized):
		respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "Not authorized"})
	case domain.IsTransient(err):
		respondJSON(w, http.StatusServiceUnavailable, Response{
			Success:   false,
			Error:     "Temporary failure, please retry",
			Retryable: true,
		})
	default:
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Internal error"})
	}
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
