package sellers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
)

// Repository handles seller persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to seller operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new seller row.
func (r *Repository) Create(ctx context.Context, seller *models.Seller) (*models.Seller, error) {
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		return nil, err
	}
	return seller, nil
}

// FindByID loads a seller by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// FindByUserID loads the seller profile owned by the provided user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// Update saves the provided seller.
func (r *Repository) Update(ctx context.Context, seller *models.Seller) error {
	if seller == nil {
		return fmt.Errorf("seller is required")
	}
	return r.db.WithContext(ctx).Save(seller).Error
}

// ListByStatus returns sellers in the given status, oldest first so review
// queues drain in submission order.
func (r *Repository) ListByStatus(ctx context.Context, status enums.SellerStatus) ([]models.Seller, error) {
	var rows []models.Seller
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// SyncProductSellerName rewrites the denormalized seller_name on the seller's products.
func (r *Repository) SyncProductSellerName(ctx context.Context, sellerID uuid.UUID, storeName string) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		UpdateColumn("seller_name", storeName).
		Error
}
