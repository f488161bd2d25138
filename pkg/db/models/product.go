package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the base catalog listing. Purchasable configurations live on its
// variants; the product itself carries no price or stock.
type Product struct {
	ID               uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID       uuid.UUID     `gorm:"column:category_id;type:uuid;not null;index"`
	BrandID          *uuid.UUID    `gorm:"column:brand_id;type:uuid"`
	Name             string        `gorm:"column:name;not null"`
	Model            *string       `gorm:"column:model"`
	Slug             string        `gorm:"column:slug;not null;uniqueIndex"`
	ShortDescription string        `gorm:"column:short_description;not null;default:''"`
	DescriptionHTML  string        `gorm:"column:description_html;not null;default:''"`
	IsActive         bool          `gorm:"column:is_active;not null;default:true"`
	IsFeatured       bool          `gorm:"column:is_featured;not null;default:false"`
	Category         *Category     `gorm:"foreignKey:CategoryID"`
	Brand            *Brand        `gorm:"foreignKey:BrandID"`
	Variants         []Variant     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images           []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Videos           []ProductVideo `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Specs            []ProductSpec  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// PrimaryImage returns the image flagged as primary, falling back to the first
// gallery image when none is flagged.
func (p Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// InStock reports whether any active variant has units available.
func (p Product) InStock() bool {
	for _, v := range p.Variants {
		if v.Available() {
			return true
		}
	}
	return false
}
