package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftly/giftly-backend/pkg/enums"
	"github.com/giftly/giftly-backend/pkg/types"
)

// Order is the immutable snapshot written at checkout. All items belong to a
// single seller; SellerID is carried from the cart invariant. Status is the
// only field mutated after submission, by seller order tooling.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     int64                 `gorm:"column:order_number;not null"`
	BuyerID         uuid.UUID             `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID        uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;not null;default:'cod'"`
	Currency        enums.Currency        `gorm:"column:currency;not null;default:'INR'"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount       decimal.Decimal       `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingCharge  decimal.Decimal       `gorm:"column:shipping_charge;type:numeric(12,2);not null"`
	Total           decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
