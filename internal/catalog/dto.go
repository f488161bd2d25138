package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
)

// ProductFilters describe the inputs supported by the product list.
type ProductFilters struct {
	CategoryIDs  []uuid.UUID
	BrandID      *uuid.UUID
	FeaturedOnly bool
	Query        string
}

// ListInput carries the storefront-facing list parameters before resolution.
type ListInput struct {
	CategorySlug string
	BrandSlug    string
	FeaturedOnly bool
	Query        string
	Limit        int
	Cursor       string
}

// CategoryNode is one node of the category tree returned to the storefront.
type CategoryNode struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	ImageURL *string        `json:"image_url,omitempty"`
	Children []CategoryNode `json:"children,omitempty"`
}

// BrandSummary is the public brand listing row.
type BrandSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	LogoURL *string   `json:"logo_url,omitempty"`
}

// VariantView is the purchasable configuration shown on product pages. The
// effective price is what lands in carts and orders.
type VariantView struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	SKU             *string          `json:"sku,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"sale_price,omitempty"`
	EffectivePrice  decimal.Decimal  `json:"effective_price"`
	OnSale          bool             `json:"on_sale"`
	DiscountPercent int              `json:"discount_percent,omitempty"`
	Stock           int              `json:"stock"`
	Available       bool             `json:"available"`
	Features        string           `json:"features,omitempty"`
}

// ProductSummary is the product card used in list responses.
type ProductSummary struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	ShortDescription string           `json:"short_description,omitempty"`
	ImageURL         *string          `json:"image_url,omitempty"`
	Category         string           `json:"category,omitempty"`
	Brand            string           `json:"brand,omitempty"`
	PriceFrom        *decimal.Decimal `json:"price_from,omitempty"`
	OnSale           bool             `json:"on_sale"`
	InStock          bool             `json:"in_stock"`
	IsFeatured       bool             `json:"is_featured"`
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// MediaView is a gallery image or embedded video.
type MediaView struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Position int    `json:"position"`
}

// SpecView is a single technical specification row.
type SpecView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductDetail is the full product page payload.
type ProductDetail struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Model            *string       `json:"model,omitempty"`
	Slug             string        `json:"slug"`
	ShortDescription string        `json:"short_description,omitempty"`
	DescriptionHTML  string        `json:"description_html,omitempty"`
	Category         *CategoryNode `json:"category,omitempty"`
	Brand            *BrandSummary `json:"brand,omitempty"`
	Variants         []VariantView `json:"variants"`
	Images           []MediaView   `json:"images,omitempty"`
	Videos           []MediaView   `json:"videos,omitempty"`
	Specs            []SpecView    `json:"specs,omitempty"`
	InStock          bool          `json:"in_stock"`
	IsFeatured       bool          `json:"is_featured"`
}

func categoryNodeFromModel(category models.Category, withChildren bool) CategoryNode {
	node := CategoryNode{
		ID:       category.ID,
		Name:     category.Name,
		Slug:     category.Slug,
		ImageURL: category.ImageURL,
	}
	if withChildren {
		for _, child := range category.Children {
			node.Children = append(node.Children, categoryNodeFromModel(child, false))
		}
	}
	return node
}

func brandSummaryFromModel(brand models.Brand) BrandSummary {
	return BrandSummary{
		ID:      brand.ID,
		Name:    brand.Name,
		Slug:    brand.Slug,
		LogoURL: brand.LogoURL,
	}
}

func variantViewFromModel(variant models.Variant) VariantView {
	effective := variant.EffectivePrice()
	return VariantView{
		ID:              variant.ID,
		Name:            variant.Name,
		SKU:             variant.SKU,
		Price:           variant.Price,
		SalePrice:       variant.SalePrice,
		EffectivePrice:  effective,
		OnSale:          variant.OnSale(),
		DiscountPercent: variant.DiscountPercent(),
		Stock:           variant.Stock,
		Available:       variant.Available(),
		Features:        variant.Features,
	}
}

func productSummaryFromModel(product models.Product) ProductSummary {
	summary := ProductSummary{
		ID:               product.ID,
		Name:             product.Name,
		Slug:             product.Slug,
		ShortDescription: product.ShortDescription,
		InStock:          product.InStock(),
		IsFeatured:       product.IsFeatured,
	}
	if img := product.PrimaryImage(); img != nil {
		summary.ImageURL = &img.URL
	}
	if product.Category != nil {
		summary.Category = product.Category.Name
	}
	if product.Brand != nil {
		summary.Brand = product.Brand.Name
	}

	// Lowest effective price across active variants drives the "from" price.
	for _, variant := range product.Variants {
		price := variant.EffectivePrice()
		if summary.PriceFrom == nil || price.LessThan(*summary.PriceFrom) {
			p := price
			summary.PriceFrom = &p
		}
		if variant.OnSale() {
			summary.OnSale = true
		}
	}
	return summary
}

func productDetailFromModel(product models.Product) ProductDetail {
	detail := ProductDetail{
		ID:               product.ID,
		Name:             product.Name,
		Model:            product.Model,
		Slug:             product.Slug,
		ShortDescription: product.ShortDescription,
		DescriptionHTML:  product.DescriptionHTML,
		InStock:          product.InStock(),
		IsFeatured:       product.IsFeatured,
	}
	if product.Category != nil {
		node := categoryNodeFromModel(*product.Category, false)
		detail.Category = &node
	}
	if product.Brand != nil {
		brand := brandSummaryFromModel(*product.Brand)
		detail.Brand = &brand
	}
	for _, variant := range product.Variants {
		detail.Variants = append(detail.Variants, variantViewFromModel(variant))
	}
	for _, image := range product.Images {
		detail.Images = append(detail.Images, MediaView{URL: image.URL, Title: image.Title, Position: image.Position})
	}
	for _, video := range product.Videos {
		detail.Videos = append(detail.Videos, MediaView{URL: video.URL, Title: video.Title, Position: video.Position})
	}
	for _, spec := range product.Specs {
		detail.Specs = append(detail.Specs, SpecView{Name: spec.Name, Value: spec.Value})
	}
	return detail
}
