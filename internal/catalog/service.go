package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/pagination"
)

// Service exposes the storefront catalog reads.
type Service interface {
	CategoryTree(ctx context.Context) ([]CategoryNode, error)
	Brands(ctx context.Context) ([]BrandSummary, error)
	ListProducts(ctx context.Context, input ListInput) (*ProductList, error)
	ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	categories, err := s.repo.ListRootCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	nodes := make([]CategoryNode, 0, len(categories))
	for _, category := range categories {
		nodes = append(nodes, categoryNodeFromModel(category, true))
	}
	return nodes, nil
}

func (s *service) Brands(ctx context.Context) ([]BrandSummary, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing brands")
	}
	summaries := make([]BrandSummary, 0, len(brands))
	for _, brand := range brands {
		summaries = append(summaries, brandSummaryFromModel(brand))
	}
	return summaries, nil
}

func (s *service) ListProducts(ctx context.Context, input ListInput) (*ProductList, error) {
	filters := ProductFilters{
		FeaturedOnly: input.FeaturedOnly,
		Query:        strings.TrimSpace(input.Query),
	}

	// A category filter covers the category itself plus its direct
	// subcategories, so browsing "Acuarios" includes every tank size.
	if slug := strings.TrimSpace(input.CategorySlug); slug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving category")
		}
		ids := []uuid.UUID{category.ID}
		for _, child := range category.Children {
			ids = append(ids, child.ID)
		}
		filters.CategoryIDs = ids
	}

	if slug := strings.TrimSpace(input.BrandSlug); slug != "" {
		brandID, err := s.resolveBrandID(ctx, slug)
		if err != nil {
			return nil, err
		}
		filters.BrandID = brandID
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	products, err := s.repo.ListProducts(ctx, filters, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	list := &ProductList{Products: make([]ProductSummary, 0, len(products))}
	hasMore := len(products) > limit
	if hasMore {
		products = products[:limit]
	}
	for _, product := range products {
		list.Products = append(list.Products, productSummaryFromModel(product))
	}
	if hasMore {
		last := products[len(products)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (s *service) ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.repo.FindProductBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	detail := productDetailFromModel(*product)
	return &detail, nil
}

func (s *service) resolveBrandID(ctx context.Context, slug string) (*uuid.UUID, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving brand")
	}
	for _, brand := range brands {
		if brand.Slug == slug {
			id := brand.ID
			return &id, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
}
