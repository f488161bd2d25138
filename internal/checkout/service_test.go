package checkout

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/internal/cart"
	"github.com/gardenaqua/gardenaqua-backend/internal/catalog"
	"github.com/gardenaqua/gardenaqua-backend/internal/orders"
	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingNotifier struct {
	orders []models.Order
}

func (n *recordingNotifier) OrderCreated(ctx context.Context, order models.Order) {
	n.orders = append(n.orders, order)
}

type fixture struct {
	db       *gorm.DB
	carts    cart.Service
	checkout Service
	notifier *recordingNotifier
}

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  parent_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  brand_id TEXT,
  name TEXT NOT NULL,
  model TEXT,
  slug TEXT NOT NULL UNIQUE,
  short_description TEXT NOT NULL DEFAULT '',
  description_html TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT,
  price NUMERIC NOT NULL,
  sale_price NUMERIC,
  stock INTEGER NOT NULL DEFAULT 0,
  features TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  variant_id TEXT,
  product_name TEXT NOT NULL,
  variant_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := setupCheckoutTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})
	catalogRepo := catalog.NewRepository(gdb)

	carts, err := cart.NewService(cart.NewMemoryStore(), catalogRepo, logg)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	store := config.StoreConfig{
		SiteName:       "GardenAqua",
		SiteURL:        "https://gardenaqua.pe",
		CurrencySymbol: "S/",
		WhatsAppNumber: "+51987654321",
	}
	svc, err := NewService(carts, catalogRepo, orders.NewRepository(gdb), &testTxRunner{db: gdb}, notifier, store, logg)
	require.NoError(t, err)

	return &fixture{db: gdb, carts: carts, checkout: svc, notifier: notifier}
}

func (f *fixture) mustCreateVariant(t *testing.T, name string, price string, stock int) *models.Variant {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		CategoryID: uuid.New(),
		Name:       name,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:8],
		IsActive:   true,
	}
	require.NoError(t, f.db.Create(product).Error)

	variant := &models.Variant{
		ID:        uuid.New(),
		ProductID: product.ID,
		Name:      "standard",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, f.db.Create(variant).Error)
	return variant
}

func (f *fixture) variantStock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var variant models.Variant
	require.NoError(t, f.db.First(&variant, "id = ?", id).Error)
	return variant.Stock
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

func validInput() Input {
	return Input{
		CustomerName: "Maria Flores",
		Email:        "maria@example.com",
		Address:      "Av. Larco 123",
		City:         "Lima",
		PostalCode:   "15074",
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	variant := f.mustCreateVariant(t, "Alimento Tropical", "15.00", 10)
	_, err := f.carts.Add(ctx, "sess-1", variant.ID, 3)
	require.NoError(t, err)

	result, err := f.checkout.Checkout(ctx, "sess-1", validInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Order.OrderNumber, "GA-"))
	assert.Len(t, result.Order.OrderNumber, 11)
	assert.Equal(t, enums.OrderStatusPending, result.Order.Status)
	assert.True(t, result.Order.Total.Equal(decimal.RequireFromString("45.00")))
	require.Len(t, result.Order.Lines, 1)
	assert.Equal(t, "Alimento Tropical", result.Order.Lines[0].ProductName)
	assert.Equal(t, 3, result.Order.Lines[0].Quantity)
	assert.Contains(t, result.WhatsAppURL, "wa.me/51987654321")

	// Stock went down, the cart is gone, and the notifier heard about it.
	assert.Equal(t, 7, f.variantStock(t, variant.ID))
	view, err := f.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.LineCount)
	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, result.Order.OrderNumber, f.notifier.orders[0].OrderNumber)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Checkout(context.Background(), "sess-1", validInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, int64(0), f.orderCount(t))
}

func TestCheckoutStockDroppedAfterAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	variant := f.mustCreateVariant(t, "Filtro Externo", "120.00", 5)
	_, err := f.carts.Add(ctx, "sess-1", variant.ID, 4)
	require.NoError(t, err)

	// Someone else bought most of the stock between add and checkout.
	require.NoError(t, f.db.Model(&models.Variant{}).Where("id = ?", variant.ID).Update("stock", 2).Error)

	_, err = f.checkout.Checkout(ctx, "sess-1", validInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStockInsufficient, typed.Code())

	// Nothing committed: no order, stock untouched, cart intact.
	assert.Equal(t, int64(0), f.orderCount(t))
	assert.Equal(t, 2, f.variantStock(t, variant.ID))
	view, err := f.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.LineCount)
	assert.Empty(t, f.notifier.orders)
}

func TestCheckoutRollsBackEarlierDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.mustCreateVariant(t, "Acondicionador", "18.00", 10)
	second := f.mustCreateVariant(t, "Termostato", "90.00", 1)

	_, err := f.carts.Add(ctx, "sess-1", first.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, "sess-1", second.ID, 1)
	require.NoError(t, err)

	// The second line becomes unfulfillable; the first line's decrement must
	// roll back with it.
	require.NoError(t, f.db.Model(&models.Variant{}).Where("id = ?", second.ID).Update("stock", 0).Error)

	_, err = f.checkout.Checkout(ctx, "sess-1", validInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStockInsufficient, typed.Code())

	assert.Equal(t, 10, f.variantStock(t, first.ID))
	assert.Equal(t, int64(0), f.orderCount(t))
}

func TestCheckoutUsesPriceSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	variant := f.mustCreateVariant(t, "Alimento Tropical", "15.00", 10)
	_, err := f.carts.Add(ctx, "sess-1", variant.ID, 2)
	require.NoError(t, err)

	// Price hike after the shopper added the item.
	require.NoError(t, f.db.Model(&models.Variant{}).Where("id = ?", variant.ID).Update("price", "99.00").Error)

	result, err := f.checkout.Checkout(ctx, "sess-1", validInput())
	require.NoError(t, err)

	assert.True(t, result.Order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("15.00")))
	assert.True(t, result.Order.Total.Equal(decimal.RequireFromString("30.00")))
}

func TestCheckoutSequentialExhaustion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	variant := f.mustCreateVariant(t, "Bomba de Aire", "60.00", 3)

	_, err := f.carts.Add(ctx, "sess-a", variant.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, "sess-b", variant.ID, 2)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, "sess-a", validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, f.variantStock(t, variant.ID))

	input := validInput()
	input.Email = "otro@example.com"
	_, err = f.checkout.Checkout(ctx, "sess-b", input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStockInsufficient, typed.Code())
	assert.Equal(t, 1, f.variantStock(t, variant.ID))

	// The second shopper trims the cart and succeeds.
	_, err = f.carts.UpdateQuantity(ctx, "sess-b", variant.ID, 1)
	require.NoError(t, err)
	result, err := f.checkout.Checkout(ctx, "sess-b", input)
	require.NoError(t, err)
	assert.Equal(t, 0, f.variantStock(t, variant.ID))
	assert.True(t, result.Order.Total.Equal(decimal.RequireFromString("60.00")))
}

func TestCheckoutPrunesVanishedVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	variant := f.mustCreateVariant(t, "Filtro Interno", "45.00", 5)
	_, err := f.carts.Add(ctx, "sess-1", variant.ID, 1)
	require.NoError(t, err)

	// Product removed from the catalog before checkout; the snapshot prune
	// leaves an empty cart which checkout refuses.
	require.NoError(t, f.db.Delete(&models.Variant{}, "id = ?", variant.ID).Error)

	_, err = f.checkout.Checkout(ctx, "sess-1", validInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
