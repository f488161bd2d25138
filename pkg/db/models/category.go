package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the storefront category tree. Top-level categories have
// no parent; subcategories reference their parent category.
type Category struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Description string     `gorm:"column:description;not null;default:''"`
	ImageURL    *string    `gorm:"column:image_url"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	Children    []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	Position    int        `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
