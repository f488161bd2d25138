package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/pagination"
)

// Repository exposes catalog reads plus the guarded stock decrement used by
// checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error)
	DecrementStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error)

	ListRootCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)

	ListProducts(ctx context.Context, filters ProductFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", ids).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// DecrementStock subtracts qty atomically and reports whether the row had
// enough stock. A false return with nil error means the guard rejected the
// decrement.
func (r *repository) DecrementStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListRootCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("position ASC, name ASC")
		}).
		Where("parent_id IS NULL AND is_active = ?", true).
		Order("position ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("position ASC, name ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&brands).Error
	if err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *repository) ListProducts(ctx context.Context, filters ProductFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("position ASC, name ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Where("show_in_gallery = ?", true).Order("position ASC")
		}).
		Preload("Category").
		Preload("Brand").
		Where("products.is_active = ?", true)

	if len(filters.CategoryIDs) > 0 {
		q = q.Where("products.category_id IN ?", filters.CategoryIDs)
	}
	if filters.BrandID != nil {
		q = q.Where("products.brand_id = ?", *filters.BrandID)
	}
	if filters.FeaturedOnly {
		q = q.Where("products.is_featured = ?", true)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		q = q.Where(
			"LOWER(products.name) LIKE LOWER(?) OR LOWER(products.short_description) LIKE LOWER(?)",
			pattern, pattern,
		)
	}
	if cursor != nil {
		q = q.Where(
			"products.created_at < ? OR (products.created_at = ? AND products.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	err := q.Order("products.created_at DESC, products.id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("position ASC, name ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Specs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Category").
		Preload("Brand").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
