package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/pagination"
)

type stubRepo struct {
	Repository

	categories []models.Category
	brands     []models.Brand
	products   []models.Product
	product    *models.Product

	listFilters ProductFilters
	listLimit   int
}

func (s *stubRepo) ListRootCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *stubRepo) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for i := range s.categories {
		if s.categories[i].Slug == slug {
			return &s.categories[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.brands, nil
}

func (s *stubRepo) ListProducts(ctx context.Context, filters ProductFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error) {
	s.listFilters = filters
	s.listLimit = limit
	if limit > len(s.products) {
		return s.products, nil
	}
	return s.products[:limit], nil
}

func (s *stubRepo) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if s.product != nil && s.product.Slug == slug {
		return s.product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestListProductsResolvesCategoryWithChildren(t *testing.T) {
	parent := models.Category{ID: uuid.New(), Slug: "acuarios", IsActive: true}
	parent.Children = []models.Category{{ID: uuid.New(), Slug: "nano", IsActive: true}}
	repo := &stubRepo{categories: []models.Category{parent}}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.ListProducts(context.Background(), ListInput{CategorySlug: "acuarios"}); err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(repo.listFilters.CategoryIDs) != 2 {
		t.Fatalf("expected parent and child category ids, got %v", repo.listFilters.CategoryIDs)
	}

	_, err = svc.ListProducts(context.Background(), ListInput{CategorySlug: "missing"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}
}

func TestListProductsPagination(t *testing.T) {
	repo := &stubRepo{}
	now := time.Now()
	for i := 0; i < 5; i++ {
		repo.products = append(repo.products, models.Product{
			ID:        uuid.New(),
			Name:      "Producto",
			Slug:      uuid.NewString(),
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	list, err := svc.ListProducts(context.Background(), ListInput{Limit: 4})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if repo.listLimit != 5 {
		t.Fatalf("expected limit+1 passed to repo, got %d", repo.listLimit)
	}
	if len(list.Products) != 4 {
		t.Fatalf("expected 4 products, got %d", len(list.Products))
	}
	if list.NextCursor == "" {
		t.Fatal("expected next cursor when more rows exist")
	}

	cursor, err := pagination.ParseCursor(list.NextCursor)
	if err != nil || cursor == nil {
		t.Fatalf("expected parseable cursor, got %v", err)
	}
	if cursor.ID != repo.products[3].ID {
		t.Fatalf("cursor should point at the last returned product")
	}
}

func TestListProductsRejectsBadCursor(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ListProducts(context.Background(), ListInput{Cursor: "not-base64!!"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProductBySlugMapsNotFound(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ProductBySlug(context.Background(), "missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestProductSummaryPricing(t *testing.T) {
	product := models.Product{
		ID:   uuid.New(),
		Name: "Alimento Tropical",
		Variants: []models.Variant{
			{Price: decimal.RequireFromString("30.00"), Stock: 2, IsActive: true},
			{Price: decimal.RequireFromString("50.00"), SalePrice: decimalPtr("25.00"), Stock: 1, IsActive: true},
		},
	}

	summary := productSummaryFromModel(product)
	if summary.PriceFrom == nil || !summary.PriceFrom.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected lowest effective price 25.00, got %v", summary.PriceFrom)
	}
	if !summary.OnSale {
		t.Fatal("expected on_sale when any variant has a sale price")
	}
	if !summary.InStock {
		t.Fatal("expected in_stock with available variants")
	}
}
