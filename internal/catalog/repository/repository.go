package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

// productRow is the storage shape of a product. The price column is text
// because legacy rows carry display strings like "$1,299.00"; it is
// normalized to a number exactly once, when a row is converted to the
// domain entity.
type productRow struct {
	ID           string         `gorm:"primaryKey;type:uuid"`
	Title        string         `gorm:"not null"`
	Price        string         `gorm:"not null;default:'0'"`
	Description  string         ``
	Category     string         `gorm:"index"`
	Image        string         ``
	Tags         pq.StringArray `gorm:"type:text[]"`
	InStock      bool           `gorm:"column:in_stock;default:true"`
	Featured     bool           `gorm:"default:false"`
	DateAdded    time.Time      `gorm:"column:date_added;index"`
	LastModified time.Time      `gorm:"column:last_modified"`
}

func (productRow) TableName() string { return "products" }

type categoryRow struct {
	ID   string `gorm:"primaryKey;type:uuid"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (categoryRow) TableName() string { return "categories" }

func (r *productRow) toDomain() domain.Product {
	return domain.Product{
		ID:           r.ID,
		Title:        r.Title,
		Price:        domain.NormalizePrice(r.Price),
		Description:  r.Description,
		Category:     r.Category,
		Image:        r.Image,
		Tags:         []string(r.Tags),
		InStock:      r.InStock,
		Featured:     r.Featured,
		DateAdded:    r.DateAdded,
		LastModified: r.LastModified,
	}
}

func fromDomain(p *domain.Product) *productRow {
	return &productRow{
		ID:    p.ID,
		Title: p.Title,
		// Prices are canonicalized to two decimals on write; sub-cent
		// precision does not survive a round trip.
		Price:        strconv.FormatFloat(p.Price, 'f', 2, 64),
		Description:  p.Description,
		Category:     p.Category,
		Image:        p.Image,
		Tags:         pq.StringArray(p.Tags),
		InStock:      p.InStock,
		Featured:     p.Featured,
		DateAdded:    p.DateAdded,
		LastModified: p.LastModified,
	}
}

// GormCatalogRepository implements domain.CatalogRepository over Postgres.
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&productRow{}, &categoryRow{})
}

func (r *GormCatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	err := r.db.WithContext(ctx).Order("date_added DESC").Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}

	products := make([]domain.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].toDomain())
	}
	return products, nil
}

func (r *GormCatalogRepository) ListCategories(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&categoryRow{}).
		Order("LOWER(name)").
		Pluck("LOWER(name)", &names).Error
	if err != nil {
		return nil, classify(err)
	}
	return names, nil
}

func (r *GormCatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var row productRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		return nil, classify(err)
	}
	product := row.toDomain()
	return &product, nil
}

func (r *GormCatalogRepository) Insert(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(fromDomain(product)).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (r *GormCatalogRepository) Update(ctx context.Context, product *domain.Product) error {
	// Select("*") forces zero values through; a plain struct update would
	// drop in_stock=false, featured=false and cleared text columns.
	result := r.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ?", product.ID).
		Select("*").
		Updates(fromDomain(product))
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCatalogRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&productRow{}, "id = ?", id)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCatalogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&productRow{}).Count(&count).Error
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// classify maps driver errors into the domain taxonomy: missing rows to
// ErrNotFound, connectivity problems to a retryable TransientError.
func classify(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransientError{Err: err}
	}
	return err
}
