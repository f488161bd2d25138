package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/internal/cart"
	"github.com/gardenaqua/gardenaqua-backend/internal/catalog"
	"github.com/gardenaqua/gardenaqua-backend/internal/notifications"
	"github.com/gardenaqua/gardenaqua-backend/internal/orders"
	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	"github.com/gardenaqua/gardenaqua-backend/pkg/db"
	dbmodels "github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

// orderNumberAttempts bounds the retry loop on order number collisions.
const orderNumberAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreatedNotifier is told about a committed order. Best effort only.
type CreatedNotifier interface {
	OrderCreated(ctx context.Context, order dbmodels.Order)
}

// Input carries the contact and shipping details collected at checkout.
type Input struct {
	CustomerName string
	Email        string
	Phone        *string
	Address      string
	City         string
	PostalCode   string
	Notes        string
}

// Result is returned after a committed checkout.
type Result struct {
	Order       orders.View `json:"order"`
	WhatsAppURL string      `json:"whatsapp_url,omitempty"`
}

// Service converts a session cart into an immutable order.
type Service interface {
	Checkout(ctx context.Context, sessionID string, input Input) (*Result, error)
}

type service struct {
	carts    cart.Service
	catalog  catalog.Repository
	orders   orders.Repository
	tx       txRunner
	notifier CreatedNotifier
	store    config.StoreConfig
	logger   *logger.Logger
}

// NewService builds the checkout service. The notifier may be nil.
func NewService(
	carts cart.Service,
	catalogRepo catalog.Repository,
	ordersRepo orders.Repository,
	tx txRunner,
	notifier CreatedNotifier,
	store config.StoreConfig,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, errors.New("cart service is required")
	}
	if catalogRepo == nil {
		return nil, errors.New("catalog repository is required")
	}
	if ordersRepo == nil {
		return nil, errors.New("orders repository is required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{
		carts:    carts,
		catalog:  catalogRepo,
		orders:   ordersRepo,
		tx:       tx,
		notifier: notifier,
		store:    store,
		logger:   logg,
	}, nil
}

// Checkout runs the cart-to-order transition. Stock is re-verified line by
// line inside one transaction with guarded decrements, prices come from the
// cart snapshots, and any failure rolls the whole thing back leaving cart and
// stock untouched.
func (s *service) Checkout(ctx context.Context, sessionID string, input Input) (*Result, error) {
	snapshot, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ctx = s.logger.WithSessionID(ctx, sessionID)

	var order *dbmodels.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order, err = s.createOrder(ctx, snapshot, input, newOrderNumber())
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "") {
			s.logger.Warn(ctx, "order number collision, retrying")
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocating order number")
	}

	ctx = s.logger.WithOrderNumber(ctx, order.OrderNumber)
	s.logger.Info(s.logger.WithField(ctx, "total", order.Total.StringFixed(2)), "order created")

	// The cart lives outside the transaction; a failed clear leaves a stale
	// cart but never a broken order.
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Error(ctx, "clearing cart after checkout failed", err)
	}

	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, *order)
	}

	return &Result{
		Order:       orders.ViewFromModel(*order),
		WhatsAppURL: notifications.WhatsAppLink(s.store, *order),
	}, nil
}

func (s *service) createOrder(ctx context.Context, snapshot *cart.Cart, input Input, orderNumber string) (*dbmodels.Order, error) {
	order := &dbmodels.Order{
		OrderNumber:  orderNumber,
		CustomerName: strings.TrimSpace(input.CustomerName),
		Email:        strings.TrimSpace(input.Email),
		Phone:        input.Phone,
		Address:      strings.TrimSpace(input.Address),
		City:         strings.TrimSpace(input.City),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Notes:        strings.TrimSpace(input.Notes),
		Status:       enums.OrderStatusPending,
		Total:        snapshot.Total(),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)

		for _, line := range snapshot.Lines() {
			variant, err := catalogRepo.FindVariantByID(ctx, line.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return unavailableError(line.VariantID, line.Quantity, 0)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant for checkout")
			}
			if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
				return unavailableError(line.VariantID, line.Quantity, 0)
			}

			ok, err := catalogRepo.DecrementStock(ctx, line.VariantID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
			}
			if !ok {
				return unavailableError(line.VariantID, line.Quantity, variant.Stock)
			}

			variantID := line.VariantID
			order.Lines = append(order.Lines, dbmodels.OrderLine{
				VariantID:   &variantID,
				ProductName: productName(variant),
				VariantName: variant.Name,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
			})
		}

		return s.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func productName(variant *dbmodels.Variant) string {
	if variant.Product != nil {
		return variant.Product.Name
	}
	return variant.Name
}

func unavailableError(variantID uuid.UUID, requested int, available int) error {
	err := pkgerrors.New(pkgerrors.CodeStockInsufficient, "insufficient stock for requested quantity")
	return err.WithDetails(map[string]any{
		"variant_id": variantID,
		"requested":  requested,
		"available":  available,
	})
}

// newOrderNumber produces the customer-facing GA-XXXXXXXX identifier. Eight
// hex chars leave collisions to the unique index plus a retry.
func newOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "GA-" + strings.ToUpper(raw[:8])
}
