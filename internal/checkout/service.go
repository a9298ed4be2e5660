package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/internal/cart"
	"github.com/giftly/giftly-backend/internal/orders"
	product "github.com/giftly/giftly-backend/internal/products"
	"github.com/giftly/giftly-backend/pkg/db"
	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/types"
)

// SubmitRequest is the checkout payload.
type SubmitRequest struct {
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
}

// Service turns a cart snapshot into a persisted order. The order write and
// the stock decrements share one transaction; the cart snapshot is cleared
// only after that transaction commits, so a failed submission leaves the
// cart intact for retry.
type Service interface {
	Preview(ctx context.Context, buyerID uuid.UUID) (*Quote, error)
	Submit(ctx context.Context, buyerID uuid.UUID, req SubmitRequest) (*orders.OrderDTO, error)
}

type cartStore interface {
	Load(ctx context.Context, buyerID uuid.UUID) ([]cart.LineItem, error)
	Delete(ctx context.Context, buyerID uuid.UUID) error
}

type service struct {
	carts    cartStore
	orders   *orders.Repository
	products *product.Repository
	dbClient *db.Client
	policy   Policy
	currency enums.Currency
}

// ServiceParams bundles the checkout service dependencies.
type ServiceParams struct {
	CartStore   cartStore
	OrderRepo   *orders.Repository
	ProductRepo *product.Repository
	DB          *db.Client
	Policy      Policy
	Currency    enums.Currency
}

// NewService builds a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartStore == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyINR
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("unsupported checkout currency %q", currency)
	}
	return &service{
		carts:    params.CartStore,
		orders:   params.OrderRepo,
		products: params.ProductRepo,
		dbClient: params.DB,
		policy:   params.Policy,
		currency: currency,
	}, nil
}

// Preview prices the current cart under the checkout policy without writing
// anything.
func (s *service) Preview(ctx context.Context, buyerID uuid.UUID) (*Quote, error) {
	items, err := s.loadItems(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	quote := ComputeQuote(items, s.policy)
	return &quote, nil
}

func (s *service) Submit(ctx context.Context, buyerID uuid.UUID, req SubmitRequest) (*orders.OrderDTO, error) {
	items, err := s.loadItems(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := ValidateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}
	paymentMethod, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	quote := ComputeQuote(items, s.policy)

	var created *models.Order
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		number, err := orderRepo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve order number")
		}

		order := buildOrder(buyerID, number, items, req.ShippingAddress, paymentMethod, s.currency, quote)

		for _, item := range items {
			if err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for "+item.Name)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
		}

		if _, err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write order")
		}
		created = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// The order is committed; dropping the snapshot afterwards means a
	// failure here can at worst leave a stale cart, never a lost order.
	if err := s.carts.Delete(ctx, buyerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart after checkout")
	}

	return orders.FromModel(created), nil
}

func (s *service) loadItems(ctx context.Context, buyerID uuid.UUID) ([]cart.LineItem, error) {
	items, err := s.carts.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return items, nil
}

func buildOrder(
	buyerID uuid.UUID,
	number int64,
	items []cart.LineItem,
	address types.ShippingAddress,
	paymentMethod enums.PaymentMethod,
	currency enums.Currency,
	quote Quote,
) *models.Order {
	orderID := uuid.New()
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return &models.Order{
		ID:              orderID,
		OrderNumber:     number,
		BuyerID:         buyerID,
		SellerID:        items[0].SellerID,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		Currency:        currency,
		ShippingAddress: address,
		Subtotal:        quote.Subtotal,
		TaxAmount:       quote.TaxAmount,
		ShippingCharge:  quote.ShippingCharge,
		Total:           quote.Total,
		Items:           orderItems,
	}
}
