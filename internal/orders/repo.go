package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	"github.com/giftly/giftly-backend/pkg/pagination"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// NextOrderNumber reserves the next value from the shared order counter.
// The sqlite branch covers the dev/test backend, which has no sequences.
func (r *Repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var number int64
	query := "SELECT nextval('order_number_seq')"
	if r.db.Dialector.Name() == "sqlite" {
		query = "SELECT COALESCE(MAX(order_number), 100000) + 1 FROM orders"
	}
	err := r.db.WithContext(ctx).Raw(query).Scan(&number).Error
	if err != nil {
		return 0, err
	}
	return number, nil
}

// Create inserts the order and its line items in one write.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByBuyer returns one page of a buyer's orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, params)
}

// ListBySeller returns one page of a seller's received orders, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.list(ctx, "seller_id = ?", sellerID, params)
}

func (r *Repository) list(ctx context.Context, scope string, scopeID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Preload("Items").
		Where(scope, scopeID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus sets the order status. Returns gorm.ErrRecordNotFound when the
// order does not exist.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
