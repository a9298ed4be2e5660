package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/types"
)

// OrderDTO is the full order snapshot returned by detail endpoints.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	OrderNumber     int64                 `json:"order_number"`
	BuyerID         uuid.UUID             `json:"buyer_id"`
	SellerID        uuid.UUID             `json:"seller_id"`
	Status          string                `json:"status"`
	PaymentMethod   string                `json:"payment_method"`
	Currency        string                `json:"currency"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	ShippingCharge  decimal.Decimal       `json:"shipping_charge"`
	Total           decimal.Decimal       `json:"total"`
	Items           []OrderItemDTO        `json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrderItemDTO is a frozen line item from the time of submission.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderSummaryDTO is the compact row used by buyer and seller order lists.
type OrderSummaryDTO struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber int64           `json:"order_number"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderListResult carries one page of order summaries plus the next cursor.
type OrderListResult struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted order and its items onto the transport shape.
func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Status:          order.Status.String(),
		PaymentMethod:   order.PaymentMethod.String(),
		Currency:        order.Currency.String(),
		ShippingAddress: order.ShippingAddress,
		Subtotal:        order.Subtotal,
		TaxAmount:       order.TaxAmount,
		ShippingCharge:  order.ShippingCharge,
		Total:           order.Total,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toSummary(order models.Order) OrderSummaryDTO {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return OrderSummaryDTO{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status.String(),
		Total:       order.Total,
		Currency:    order.Currency.String(),
		ItemCount:   count,
		CreatedAt:   order.CreatedAt,
	}
}
