package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  parent_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS brands (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  logo_url TEXT,
  description TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  brand_id TEXT,
  name TEXT NOT NULL,
  model TEXT,
  slug TEXT NOT NULL UNIQUE,
  short_description TEXT NOT NULL DEFAULT '',
  description_html TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT,
  price NUMERIC NOT NULL,
  sale_price NUMERIC,
  stock INTEGER NOT NULL DEFAULT 0,
  features TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  url TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  is_primary INTEGER NOT NULL DEFAULT 0,
  show_in_gallery INTEGER NOT NULL DEFAULT 1,
  show_in_description INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_videos (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  url TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_specs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  value TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func mustCreateCategory(t *testing.T, db *gorm.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	category := &models.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		ParentID: parentID,
		IsActive: true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func mustCreateProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, name string, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		Slug:       fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		IsActive:   true,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func mustCreateVariant(t *testing.T, db *gorm.DB, productID uuid.UUID, price string, stock int) *models.Variant {
	t.Helper()
	variant := &models.Variant{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      "standard",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestDecrementStockGuardsAvailability(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "filtros", nil)
	product := mustCreateProduct(t, db, category.ID, "Filtro Externo", time.Now())
	variant := mustCreateVariant(t, db, product.ID, "120.00", 3)

	ok, err := repo.DecrementStock(ctx, variant.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only one unit left; asking for two must be rejected without changes.
	ok, err = repo.DecrementStock(ctx, variant.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	var got models.Variant
	require.NoError(t, db.First(&got, "id = ?", variant.ID).Error)
	assert.Equal(t, 1, got.Stock)

	ok, err = repo.DecrementStock(ctx, variant.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.First(&got, "id = ?", variant.ID).Error)
	assert.Equal(t, 0, got.Stock)
}

func TestDecrementStockUnknownVariant(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	ok, err := repo.DecrementStock(context.Background(), uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListProductsFiltersAndCursor(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	acuarios := mustCreateCategory(t, db, "acuarios", nil)
	filtros := mustCreateCategory(t, db, "filtros", nil)

	base := time.Now().Add(-time.Hour)
	var inCategory []*models.Product
	for i := 0; i < 3; i++ {
		p := mustCreateProduct(t, db, acuarios.ID, fmt.Sprintf("Acuario %d", i), base.Add(time.Duration(i)*time.Minute))
		mustCreateVariant(t, db, p.ID, "99.90", 5)
		inCategory = append(inCategory, p)
	}
	other := mustCreateProduct(t, db, filtros.ID, "Filtro Interno", base.Add(10*time.Minute))
	mustCreateVariant(t, db, other.ID, "45.00", 2)

	// Inactive products never surface.
	hidden := mustCreateProduct(t, db, acuarios.ID, "Acuario Oculto", base.Add(20*time.Minute))
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	products, err := repo.ListProducts(ctx, ProductFilters{CategoryIDs: []uuid.UUID{acuarios.ID}}, 10, nil)
	require.NoError(t, err)
	require.Len(t, products, 3)
	// Newest first.
	assert.Equal(t, inCategory[2].ID, products[0].ID)

	// Page of two, then resume from the cursor.
	page, err := repo.ListProducts(ctx, ProductFilters{CategoryIDs: []uuid.UUID{acuarios.ID}}, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)

	last := page[len(page)-1]
	rest, err := repo.ListProducts(ctx, ProductFilters{CategoryIDs: []uuid.UUID{acuarios.ID}}, 10, &pagination.Cursor{
		CreatedAt: last.CreatedAt,
		ID:        last.ID,
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, inCategory[0].ID, rest[0].ID)
}

func TestListProductsSearchQuery(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "alimentos", nil)
	match := mustCreateProduct(t, db, category.ID, "Alimento Tropical Premium", time.Now())
	mustCreateVariant(t, db, match.ID, "25.00", 8)
	miss := mustCreateProduct(t, db, category.ID, "Acondicionador de Agua", time.Now())
	mustCreateVariant(t, db, miss.ID, "18.00", 4)

	products, err := repo.ListProducts(ctx, ProductFilters{Query: "tropical"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, match.ID, products[0].ID)
}

func TestListRootCategoriesIncludesChildren(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	root := mustCreateCategory(t, db, "acuarios", nil)
	child := mustCreateCategory(t, db, "nano", &root.ID)
	inactive := mustCreateCategory(t, db, "descontinuado", &root.ID)
	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	categories, err := repo.ListRootCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Len(t, categories[0].Children, 1)
	assert.Equal(t, child.ID, categories[0].Children[0].ID)
}

func TestFindProductBySlugPreloadsDetail(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "acuarios", nil)
	product := mustCreateProduct(t, db, category.ID, "Acuario 60L", time.Now())
	mustCreateVariant(t, db, product.ID, "250.00", 2)
	require.NoError(t, db.Create(&models.ProductImage{
		ID:        uuid.New(),
		ProductID: product.ID,
		URL:       "https://cdn.example.com/acuario-60l.jpg",
		IsPrimary: true,
	}).Error)

	got, err := repo.FindProductBySlug(ctx, product.Slug)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	require.Len(t, got.Images, 1)
	require.NotNil(t, got.Category)
	assert.Equal(t, category.ID, got.Category.ID)

	_, err = repo.FindProductBySlug(ctx, "missing-slug")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
