package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
)

// LineView is one purchased line as shown on confirmation and lookup pages.
type LineView struct {
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// View is the public order payload. Lines and total are frozen snapshots from
// checkout time.
type View struct {
	ID           uuid.UUID         `json:"id"`
	OrderNumber  string            `json:"order_number"`
	CustomerName string            `json:"customer_name"`
	Email        string            `json:"email"`
	Phone        *string           `json:"phone,omitempty"`
	Address      string            `json:"address"`
	City         string            `json:"city"`
	PostalCode   string            `json:"postal_code"`
	Notes        string            `json:"notes,omitempty"`
	Status       enums.OrderStatus `json:"status"`
	StatusLabel  string            `json:"status_label"`
	Lines        []LineView        `json:"lines"`
	ItemCount    int               `json:"item_count"`
	Total        decimal.Decimal   `json:"total"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ViewFromModel maps the stored order to its public shape.
func ViewFromModel(order models.Order) View {
	view := View{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		Email:        order.Email,
		Phone:        order.Phone,
		Address:      order.Address,
		City:         order.City,
		PostalCode:   order.PostalCode,
		Notes:        order.Notes,
		Status:       order.Status,
		StatusLabel:  order.Status.Label(),
		ItemCount:    order.ItemCount(),
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
		Lines:        make([]LineView, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, LineView{
			ProductName: line.ProductName,
			VariantName: line.VariantName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal(),
		})
	}
	return view
}
