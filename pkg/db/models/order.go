package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
)

// Order is the record produced by a successful checkout. Guest checkout only:
// contact and shipping fields live on the order itself, no user account. The
// total is frozen at creation; status is the only field that changes afterward.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber  string            `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName string            `gorm:"column:customer_name;not null"`
	Email        string            `gorm:"column:email;not null;index"`
	Phone        *string           `gorm:"column:phone"`
	Address      string            `gorm:"column:address;not null"`
	City         string            `gorm:"column:city;not null"`
	PostalCode   string            `gorm:"column:postal_code;not null"`
	Notes        string            `gorm:"column:notes;not null;default:''"`
	Status       enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Total        decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Lines        []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemCount returns the total number of units across all lines.
func (o Order) ItemCount() int {
	count := 0
	for _, line := range o.Lines {
		count += line.Quantity
	}
	return count
}

// OrderLine captures one purchased variant. Product and variant names plus the
// unit price are denormalized copies taken at purchase time, so the record
// survives later catalog edits or deletions. VariantID is a weak reference and
// is nulled if the variant disappears.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID   *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	ProductName string          `gorm:"column:product_name;not null"`
	VariantName string          `gorm:"column:variant_name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal is always recomputed from the frozen unit price and quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
