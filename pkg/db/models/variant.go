package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is a purchasable configuration of a product (size, volume, model
// tier) with its own price and stock counter. Stock is never allowed to go
// negative; decrements happen through guarded updates inside the checkout
// transaction.
type Variant struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	SKU       *string          `gorm:"column:sku;uniqueIndex"`
	Price     decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	SalePrice *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)"`
	Stock     int              `gorm:"column:stock;not null;default:0"`
	Features  string           `gorm:"column:features;not null;default:''"`
	IsActive  bool             `gorm:"column:is_active;not null;default:true"`
	Position  int              `gorm:"column:position;not null;default:0"`
	Product   *Product         `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the sale price when one is set, otherwise the regular
// price. This is the price snapshotted into carts and orders.
func (v Variant) EffectivePrice() decimal.Decimal {
	if v.SalePrice != nil {
		return *v.SalePrice
	}
	return v.Price
}

// OnSale reports whether a sale price is active.
func (v Variant) OnSale() bool {
	return v.SalePrice != nil
}

// DiscountPercent returns the rounded discount against the regular price, or 0.
func (v Variant) DiscountPercent() int {
	if v.SalePrice == nil || !v.Price.IsPositive() {
		return 0
	}
	ratio := v.Price.Sub(*v.SalePrice).Div(v.Price).Mul(decimal.NewFromInt(100))
	return int(ratio.Round(0).IntPart())
}

// Available reports whether the variant can currently be purchased.
func (v Variant) Available() bool {
	return v.IsActive && v.Stock > 0
}
