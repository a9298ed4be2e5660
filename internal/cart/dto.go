package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartDTO is the cart payload returned to clients. Totals are the display
// policy amounts, recomputed on every read.
type CartDTO struct {
	Items    []CartItemDTO   `json:"items"`
	SellerID *uuid.UUID      `json:"seller_id,omitempty"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CartItemDTO is the transport shape of a single line item.
type CartItemDTO struct {
	ProductID  uuid.UUID       `json:"product_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Quantity   int             `json:"quantity"`
	ImageURL   *string         `json:"image_url,omitempty"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// NewCartDTO flattens a cart into its transport shape.
func NewCartDTO(c *Cart) *CartDTO {
	items := c.Items()
	dto := &CartDTO{
		Items:    make([]CartItemDTO, 0, len(items)),
		Count:    c.Count(),
		Subtotal: c.Subtotal(),
		Tax:      c.Tax(),
		Shipping: c.Shipping(),
		Total:    c.Total(),
	}
	if sellerID, ok := c.SellerID(); ok {
		dto.SellerID = &sellerID
	}
	for _, item := range items {
		dto.Items = append(dto.Items, CartItemDTO{
			ProductID:  item.ProductID,
			SellerID:   item.SellerID,
			SellerName: item.SellerName,
			Name:       item.Name,
			Price:      item.Price,
			Stock:      item.Stock,
			Quantity:   item.Quantity,
			ImageURL:   item.ImageURL,
			LineTotal:  item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return dto
}
