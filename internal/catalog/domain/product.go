package domain

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Product is the catalog entity. Prices are normalized to a numeric value
// exactly once, at the boundary where external data enters the system;
// everything downstream works with the Price field only.
type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Price        float64   `json:"price"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Tags         []string  `json:"tags"`
	InStock      bool      `json:"in_stock"`
	Featured     bool      `json:"featured"`
	DateAdded    time.Time `json:"date_added"`
	LastModified time.Time `json:"last_modified"`
}

// NormalizedCategory returns the category in the lower-case form used for
// every category comparison.
func (p *Product) NormalizedCategory() string {
	return strings.ToLower(strings.TrimSpace(p.Category))
}

var priceStrip = regexp.MustCompile(`[^0-9.\-]+`)

// ParsePrice turns a display price string such as "$1,299.00" into a
// numeric amount, stripping currency symbols and separators. It rejects
// values that are unparsable, non-finite or negative; use it where
// invalid input should fail fast, at ingestion.
func ParsePrice(raw string) (float64, error) {
	cleaned := priceStrip.ReplaceAllString(raw, "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ValidationError{Field: "price", Message: "price is not a number"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, &ValidationError{Field: "price", Message: "price must be a non-negative number"}
	}
	return value, nil
}

// NormalizePrice is the lenient variant used when reading stored rows:
// a value ParsePrice would reject becomes zero rather than an error, so
// a single bad row can never poison filtering or sorting.
func NormalizePrice(raw string) float64 {
	value, err := ParsePrice(raw)
	if err != nil {
		return 0
	}
	return value
}

// Validate checks the fields required before a product may be stored.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(p.Category) == "" {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return &ValidationError{Field: "price", Message: "price must be a non-negative number"}
	}
	return nil
}

// CatalogRepository is the contract for catalog data access. The backing
// store is treated as an opaque document store; implementations classify
// their failures into the error taxonomy of this package.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Insert(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
