package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftly/giftly-backend/pkg/enums"
)

// Seller is the storefront profile behind the approval gate.
type Seller struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StoreName        string             `gorm:"column:store_name;not null"`
	StoreDescription *string            `gorm:"column:store_description"`
	StoreLogoURL     *string            `gorm:"column:store_logo_url"`
	StoreBannerURL   *string            `gorm:"column:store_banner_url"`
	Status           enums.SellerStatus `gorm:"column:status;not null;default:'pending'"`
	ApprovedAt       *time.Time         `gorm:"column:approved_at"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
