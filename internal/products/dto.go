package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftly/giftly-backend/pkg/db/models"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	SKU         *string          `json:"sku,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	Stock       int              `json:"stock"`
	Images      []string         `json:"images"`
	IsActive    bool             `json:"is_active"`
	Seller      SellerSummaryDTO `json:"seller"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductSummary is the lighter catalog row used by list endpoints.
type ProductSummary struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	ImageURL   *string         `json:"image_url,omitempty"`
	SellerID   uuid.UUID       `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SellerSummaryDTO surfaces limited storefront data for product responses.
type SellerSummaryDTO struct {
	SellerID  uuid.UUID `json:"seller_id"`
	StoreName string    `json:"store_name"`
	LogoURL   *string   `json:"logo_url,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model and seller summary.
func NewProductDTO(product *models.Product, summary *SellerSummary) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       product.Stock,
		Images:      append([]string{}, product.Images...),
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}

	if summary != nil {
		dto.Seller = SellerSummaryDTO{
			SellerID:  summary.SellerID,
			StoreName: summary.StoreName,
			LogoURL:   summary.LogoURL,
		}
	} else {
		dto.Seller = SellerSummaryDTO{
			SellerID:  product.SellerID,
			StoreName: product.SellerName,
		}
	}

	return dto
}
