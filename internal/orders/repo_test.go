package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/pagination"
	"github.com/giftly/giftly-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
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
);`
	items := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(orders).Error)
	require.NoError(t, conn.Exec(items).Error)
	return conn
}

func buildTestOrder(buyerID, sellerID uuid.UUID, number int64, createdAt time.Time) *models.Order {
	orderID := uuid.New()
	return &models.Order{
		ID:            orderID,
		OrderNumber:   number,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCOD,
		Currency:      enums.CurrencyINR,
		ShippingAddress: types.ShippingAddress{
			FullName:     "Asha Buyer",
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			State:        "Karnataka",
			PostalCode:   "560001",
			Country:      "India",
			Phone:        "+91 98765 43210",
		},
		Subtotal:       decimal.RequireFromString("900.00"),
		TaxAmount:      decimal.RequireFromString("45.00"),
		ShippingCharge: decimal.RequireFromString("50.00"),
		Total:          decimal.RequireFromString("995.00"),
		Items: []models.OrderItem{
			{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: uuid.New(),
				Name:      "Ceramic Mug",
				Price:     decimal.RequireFromString("450.00"),
				Quantity:  2,
			},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	order := buildTestOrder(buyerID, sellerID, 100001, time.Now().UTC())

	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100001), found.OrderNumber)
	assert.Equal(t, buyerID, found.BuyerID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Ceramic Mug", found.Items[0].Name)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("995.00")))
	assert.Equal(t, "560001", found.ShippingAddress.PostalCode)
}

func TestRepositoryListByBuyerPaginates(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := buildTestOrder(buyerID, sellerID, int64(100001+i), base.Add(time.Duration(i)*time.Hour))
		_, err := repo.Create(ctx, order)
		require.NoError(t, err)
	}
	// Another buyer's order must not leak into the page.
	_, err := repo.Create(ctx, buildTestOrder(uuid.New(), sellerID, 200001, base))
	require.NoError(t, err)

	firstPage, err := repo.ListByBuyer(ctx, buyerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 3) // limit+1 buffer

	svc, err := NewService(repo)
	require.NoError(t, err)

	page, err := svc.ListBuyerOrders(ctx, buyerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, int64(100003), page.Orders[0].OrderNumber)
	assert.Equal(t, int64(100002), page.Orders[1].OrderNumber)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListBuyerOrders(ctx, buyerID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Equal(t, int64(100001), rest.Orders[0].OrderNumber)
	assert.Empty(t, rest.NextCursor)
}

func TestServiceOwnershipChecks(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	order := buildTestOrder(buyerID, sellerID, 100001, time.Now().UTC())
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.GetBuyerOrder(ctx, buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, dto.ID)

	_, err = svc.GetBuyerOrder(ctx, uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	_, err = svc.GetSellerOrder(ctx, uuid.New(), order.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceUpdateStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	order := buildTestOrder(buyerID, sellerID, 100001, time.Now().UTC())
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.UpdateStatus(ctx, sellerID, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, "shipped", dto.Status)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)

	// Lifecycle is not policed, so jumping straight back to pending is allowed.
	dto, err = svc.UpdateStatus(ctx, sellerID, order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)

	_, err = svc.UpdateStatus(ctx, sellerID, order.ID, "refunded")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.UpdateStatus(ctx, uuid.New(), order.ID, "delivered")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
