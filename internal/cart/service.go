package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/internal/catalog"
	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

// LineView is an enriched cart line joined against the live catalog.
type LineView struct {
	VariantID    uuid.UUID       `json:"variant_id"`
	ProductName  string          `json:"product_name"`
	ProductSlug  string          `json:"product_slug,omitempty"`
	VariantName  string          `json:"variant_name"`
	ImageURL     *string         `json:"image_url,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	PriceChanged bool            `json:"price_changed"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Stock        int             `json:"stock"`
}

// View is the cart payload returned to the storefront.
type View struct {
	Lines     []LineView      `json:"lines"`
	LineCount int             `json:"line_count"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// Service owns the session cart operations. Stock is checked at every
// boundary so a shopper hears about shortages before checkout, but the only
// authoritative check is the guarded decrement inside the checkout
// transaction.
type Service interface {
	Get(ctx context.Context, sessionID string) (*View, error)
	Add(ctx context.Context, sessionID string, variantID uuid.UUID, qty int) (*View, error)
	UpdateQuantity(ctx context.Context, sessionID string, variantID uuid.UUID, qty int) (*View, error)
	Remove(ctx context.Context, sessionID string, variantID uuid.UUID) (*View, error)
	Clear(ctx context.Context, sessionID string) error

	// Snapshot returns the raw cart for checkout to consume.
	Snapshot(ctx context.Context, sessionID string) (*Cart, error)
}

type service struct {
	store   SessionStore
	catalog catalog.Repository
	logger  *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(store SessionStore, catalogRepo catalog.Repository, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if catalogRepo == nil {
		return nil, errors.New("catalog repository is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{store: store, catalog: catalogRepo, logger: logg}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, sessionID, cart)
}

func (s *service) Add(ctx context.Context, sessionID string, variantID uuid.UUID, qty int) (*View, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	variant, err := s.purchasableVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	requested := qty
	if line, ok := cart.Get(variantID); ok {
		requested += line.Quantity
	}
	if requested > variant.Stock {
		return nil, stockError(variant, requested)
	}

	if err := cart.Add(variantID, qty, variant.EffectivePrice()); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return s.enrich(ctx, sessionID, cart)
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, variantID uuid.UUID, qty int) (*View, error) {
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Get(variantID); !ok {
		// absent lines are a no-op, the shopper may have removed it in
		// another tab
		return s.enrich(ctx, sessionID, cart)
	}

	if qty > 0 {
		variant, err := s.purchasableVariant(ctx, variantID)
		if err != nil {
			return nil, err
		}
		if qty > variant.Stock {
			return nil, stockError(variant, qty)
		}
	}

	if _, err := cart.SetQuantity(variantID, qty); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return s.enrich(ctx, sessionID, cart)
}

func (s *service) Remove(ctx context.Context, sessionID string, variantID uuid.UUID) (*View, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(variantID) {
		return s.enrich(ctx, sessionID, cart)
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return s.enrich(ctx, sessionID, cart)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func (s *service) Snapshot(ctx context.Context, sessionID string) (*Cart, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pruned, err := s.pruneStale(ctx, sessionID, cart)
	if err != nil {
		return nil, err
	}
	return pruned, nil
}

func (s *service) loadCart(ctx context.Context, sessionID string) (*Cart, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return cart, nil
}

func (s *service) purchasableVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error) {
	variant, err := s.catalog.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}
	if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not available")
	}
	return variant, nil
}

// pruneStale drops lines whose variant no longer exists or went inactive and
// persists the shrunken cart so the session converges.
func (s *service) pruneStale(ctx context.Context, sessionID string, cart *Cart) (*Cart, error) {
	lines := cart.Lines()
	if len(lines) == 0 {
		return cart, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	variants, err := s.catalog.FindVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart variants")
	}

	live := make(map[uuid.UUID]bool, len(variants))
	for _, variant := range variants {
		if variant.IsActive && (variant.Product == nil || variant.Product.IsActive) {
			live[variant.ID] = true
		}
	}

	pruned := false
	for _, line := range lines {
		if !live[line.VariantID] {
			cart.Remove(line.VariantID)
			pruned = true
		}
	}
	if pruned {
		if err := s.store.Save(ctx, sessionID, cart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving pruned cart")
		}
		s.logger.Warn(s.logger.WithSessionID(ctx, sessionID), "pruned stale cart lines")
	}
	return cart, nil
}

func (s *service) enrich(ctx context.Context, sessionID string, cart *Cart) (*View, error) {
	cart, err := s.pruneStale(ctx, sessionID, cart)
	if err != nil {
		return nil, err
	}

	view := &View{
		Lines:     []LineView{},
		LineCount: cart.LineCount(),
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
	lines := cart.Lines()
	if len(lines) == 0 {
		return view, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	variants, err := s.catalog.FindVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart variants")
	}
	byID := make(map[uuid.UUID]models.Variant, len(variants))
	for _, variant := range variants {
		byID[variant.ID] = variant
	}

	for _, line := range lines {
		variant, ok := byID[line.VariantID]
		if !ok {
			continue
		}
		current := variant.EffectivePrice()
		lineView := LineView{
			VariantID:    line.VariantID,
			VariantName:  variant.Name,
			UnitPrice:    line.UnitPrice,
			CurrentPrice: current,
			PriceChanged: !current.Equal(line.UnitPrice),
			Quantity:     line.Quantity,
			Subtotal:     line.Subtotal(),
			Stock:        variant.Stock,
		}
		if variant.Product != nil {
			lineView.ProductName = variant.Product.Name
			lineView.ProductSlug = variant.Product.Slug
			if img := variant.Product.PrimaryImage(); img != nil {
				lineView.ImageURL = &img.URL
			}
		}
		view.Lines = append(view.Lines, lineView)
	}
	return view, nil
}

func stockError(variant *models.Variant, requested int) error {
	err := pkgerrors.New(pkgerrors.CodeStockInsufficient, "insufficient stock for requested quantity")
	return err.WithDetails(map[string]any{
		"variant_id": variant.ID,
		"requested":  requested,
		"available":  variant.Stock,
	})
}
