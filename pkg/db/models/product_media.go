package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage references an asset in the external image store. Only the URL
// is persisted; resizing and format conversion happen upstream.
type ProductImage struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL               string    `gorm:"column:url;not null"`
	Title             string    `gorm:"column:title;not null;default:''"`
	IsPrimary         bool      `gorm:"column:is_primary;not null;default:false"`
	ShowInGallery     bool      `gorm:"column:show_in_gallery;not null;default:true"`
	ShowInDescription bool      `gorm:"column:show_in_description;not null;default:false"`
	Position          int       `gorm:"column:position;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductVideo is an embedded video link shown on the product page.
type ProductVideo struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	Title     string    `gorm:"column:title;not null;default:''"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductSpec is a single technical specification row (name/value).
type ProductSpec struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Value     string    `gorm:"column:value;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
