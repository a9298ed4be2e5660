package sellers

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftly/giftly-backend/pkg/db/models"
)

// SellerDTO is the storefront payload returned to clients.
type SellerDTO struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	StoreName        string     `json:"store_name"`
	StoreDescription *string    `json:"store_description,omitempty"`
	LogoURL          *string    `json:"logo_url,omitempty"`
	BannerURL        *string    `json:"banner_url,omitempty"`
	Status           string     `json:"status"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FromModel maps the persisted seller row onto the API payload.
func FromModel(seller *models.Seller) *SellerDTO {
	if seller == nil {
		return nil
	}
	return &SellerDTO{
		ID:               seller.ID,
		UserID:           seller.UserID,
		StoreName:        seller.StoreName,
		StoreDescription: seller.StoreDescription,
		LogoURL:          seller.StoreLogoURL,
		BannerURL:        seller.StoreBannerURL,
		Status:           seller.Status.String(),
		ApprovedAt:       seller.ApprovedAt,
		CreatedAt:        seller.CreatedAt,
		UpdatedAt:        seller.UpdatedAt,
	}
}
