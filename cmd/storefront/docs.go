package main

// @title Storefront Service API
// @version 1.0
// @description Jewelry storefront service with catalog, admin sessions and full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Catalog
// @tag.description Public catalog browsing endpoints

// @tag.name Admin
// @tag.description Administrator catalog management endpoints

// @tag.name Auth
// @tag.description Administrator session endpoints

// @tag.name Health
// @tag.description Service health endpoints
