package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/internal/cart"
	"github.com/giftly/giftly-backend/internal/orders"
	product "github.com/giftly/giftly-backend/internal/products"
	"github.com/giftly/giftly-backend/pkg/db"
	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
)

type memoryCartStore struct {
	snapshots map[uuid.UUID][]cart.LineItem
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{snapshots: map[uuid.UUID][]cart.LineItem{}}
}

func (m *memoryCartStore) Load(ctx context.Context, buyerID uuid.UUID) ([]cart.LineItem, error) {
	return m.snapshots[buyerID], nil
}

func (m *memoryCartStore) Delete(ctx context.Context, buyerID uuid.UUID) error {
	delete(m.snapshots, buyerID)
	return nil
}

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  seller_name TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  category TEXT NOT NULL,
  sku TEXT,
  images TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'cod',
  currency TEXT NOT NULL DEFAULT 'INR',
  shipping_address TEXT,
  subtotal NUMERIC NOT NULL,
  tax_amount NUMERIC NOT NULL,
  shipping_charge NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func insertCheckoutProduct(t *testing.T, conn *gorm.DB, sellerID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()

	p := &models.Product{
		ID:         uuid.New(),
		SellerID:   sellerID,
		SellerName: "Checkout Store",
		Name:       "Checkout Product",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Category:   "gifts",
		IsActive:   true,
	}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func snapshotFromProduct(p *models.Product, qty int) cart.LineItem {
	return cart.LineItem{
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		SellerName: p.SellerName,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		Quantity:   qty,
	}
}

func buildCheckoutService(t *testing.T, conn *gorm.DB, carts cartStore) Service {
	t.Helper()

	client, err := db.NewWithConn(conn)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		CartStore:   carts,
		OrderRepo:   orders.NewRepository(conn),
		ProductRepo: product.NewRepository(conn),
		DB:          client,
		Policy:      checkoutPolicy(),
		Currency:    enums.CurrencyINR,
	})
	require.NoError(t, err)
	return svc
}

func TestSubmitWritesOrderAndClearsCart(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	carts := newMemoryCartStore()
	svc := buildCheckoutService(t, conn, carts)
	ctx := context.Background()

	sellerID := uuid.New()
	buyerID := uuid.New()
	p := insertCheckoutProduct(t, conn, sellerID, "450.00", 10)
	carts.snapshots[buyerID] = []cart.LineItem{snapshotFromProduct(p, 2)}

	dto, err := svc.Submit(ctx, buyerID, SubmitRequest{
		ShippingAddress: validAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	assert.Equal(t, buyerID, dto.BuyerID)
	assert.Equal(t, sellerID, dto.SellerID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, int64(100001), dto.OrderNumber)
	assert.True(t, dto.Subtotal.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, dto.TaxAmount.Equal(decimal.RequireFromString("45.00")))
	assert.True(t, dto.ShippingCharge.Equal(decimal.RequireFromString("50")))
	assert.True(t, dto.Total.Equal(decimal.RequireFromString("995.00")))
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)

	var stock int
	require.NoError(t, conn.Raw("SELECT stock FROM products WHERE id = ?", p.ID).Scan(&stock).Error)
	assert.Equal(t, 8, stock)

	_, cartRemains := carts.snapshots[buyerID]
	assert.False(t, cartRemains)

	stored, err := orders.NewRepository(conn).FindByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "560001", stored.ShippingAddress.PostalCode)
}

func TestSubmitInsufficientStockLeavesCartIntact(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	carts := newMemoryCartStore()
	svc := buildCheckoutService(t, conn, carts)
	ctx := context.Background()

	sellerID := uuid.New()
	buyerID := uuid.New()
	p := insertCheckoutProduct(t, conn, sellerID, "450.00", 1)
	// Snapshot was taken before someone else bought the stock.
	item := snapshotFromProduct(p, 2)
	item.Stock = 2
	carts.snapshots[buyerID] = []cart.LineItem{item}

	_, err := svc.Submit(ctx, buyerID, SubmitRequest{
		ShippingAddress: validAddress(),
		PaymentMethod:   "cod",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// Transaction rolled back: no order rows, stock unchanged, cart intact.
	var orderCount int64
	require.NoError(t, conn.Raw("SELECT COUNT(*) FROM orders").Scan(&orderCount).Error)
	assert.Zero(t, orderCount)

	var stock int
	require.NoError(t, conn.Raw("SELECT stock FROM products WHERE id = ?", p.ID).Scan(&stock).Error)
	assert.Equal(t, 1, stock)

	require.Len(t, carts.snapshots[buyerID], 1)
}

func TestSubmitValidatesPreconditions(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	carts := newMemoryCartStore()
	svc := buildCheckoutService(t, conn, carts)
	ctx := context.Background()

	buyerID := uuid.New()

	_, err := svc.Submit(ctx, buyerID, SubmitRequest{
		ShippingAddress: validAddress(),
		PaymentMethod:   "cod",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	p := insertCheckoutProduct(t, conn, uuid.New(), "450.00", 10)
	carts.snapshots[buyerID] = []cart.LineItem{snapshotFromProduct(p, 1)}

	badAddress := validAddress()
	badAddress.Phone = "not a phone"
	_, err = svc.Submit(ctx, buyerID, SubmitRequest{
		ShippingAddress: badAddress,
		PaymentMethod:   "cod",
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Submit(ctx, buyerID, SubmitRequest{
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// Preconditions failed, so the cart was never touched.
	require.Len(t, carts.snapshots[buyerID], 1)
	var orderCount int64
	require.NoError(t, conn.Raw("SELECT COUNT(*) FROM orders").Scan(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestPreviewPricesCartWithoutWriting(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	carts := newMemoryCartStore()
	svc := buildCheckoutService(t, conn, carts)
	ctx := context.Background()

	buyerID := uuid.New()
	p := insertCheckoutProduct(t, conn, uuid.New(), "450.00", 10)
	carts.snapshots[buyerID] = []cart.LineItem{snapshotFromProduct(p, 2)}

	quote, err := svc.Preview(ctx, buyerID)
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("995.00")))

	var orderCount int64
	require.NoError(t, conn.Raw("SELECT COUNT(*) FROM orders").Scan(&orderCount).Error)
	assert.Zero(t, orderCount)
	require.Len(t, carts.snapshots[buyerID], 1)
}
