package product

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	"github.com/giftly/giftly-backend/pkg/pagination"
)

// ProductRepository defines CRUD operations for product listings.
type ProductRepository interface {
	CreateProduct(context.Context, *models.Product) (*models.Product, error)
	UpdateProduct(context.Context, *models.Product) (*models.Product, error)
	DeleteProduct(context.Context, uuid.UUID) error
	GetProductDetail(context.Context, uuid.UUID) (*models.Product, *SellerSummary, error)
	ListProductsBySeller(context.Context, uuid.UUID) ([]models.Product, error)
}

// SellerSummary exposes the minimal storefront data used by product read paths.
type SellerSummary struct {
	SellerID  uuid.UUID
	StoreName string
	Status    enums.SellerStatus
	LogoURL   *string
}

const sellerSummaryQuery = `
SELECT s.id AS seller_id,
       s.store_name,
       s.status,
       s.store_logo_url AS logo_url
FROM sellers s
WHERE s.id = ?
`

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// DecrementStock reduces stock by the ordered quantity and fails when not enough is left.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetProductDetail fetches a product with its seller summary.
func (r *Repository) GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, *SellerSummary, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}

	summary, err := r.fetchSellerSummary(ctx, product.SellerID)
	if err != nil {
		return &product, nil, err
	}
	return &product, summary, nil
}

// ListProductsBySeller lists the products owned by a seller, newest first.
func (r *Repository) ListProductsBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

type productListQuery struct {
	Pagination pagination.Params
	Filters    ProductListFilters
	SellerID   *uuid.UUID
}

// ListProductSummaries pages the catalog. Without a seller scope only active
// products from approved sellers are visible.
func (r *Repository) ListProductSummaries(ctx context.Context, query productListQuery) (*ProductListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join([]string{
			"p.id",
			"p.name",
			"p.category",
			"p.price",
			"p.stock",
			"p.images[1] AS image_url",
			"p.seller_id",
			"p.seller_name",
			"p.created_at",
			"p.updated_at",
		}, ", ")).
		Joins("JOIN sellers s ON s.id = p.seller_id")

	filter := query.Filters
	if filter.Category != nil {
		qb = qb.Where("p.category = ?", *filter.Category)
	}
	if filter.PriceMin != nil {
		qb = qb.Where("p.price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		qb = qb.Where("p.price <= ?", *filter.PriceMax)
	}
	if filter.InStock != nil && *filter.InStock {
		qb = qb.Where("p.stock > 0")
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)", pattern, pattern)
	}

	if query.SellerID != nil {
		qb = qb.Where("p.seller_id = ?", *query.SellerID)
	} else {
		qb = qb.Where("s.status = ?", enums.SellerStatusApproved)
		qb = qb.Where("p.is_active = ?", true)
	}

	if cursor != nil {
		qb = qb.Where("(p.created_at < ?) OR (p.created_at = ? AND p.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("p.created_at DESC").Order("p.id DESC").Limit(limitWithBuffer)

	var records []productSummaryRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]ProductSummary, 0, len(resultRows))
	for _, record := range resultRows {
		summaries = append(summaries, record.toSummary())
	}

	return &ProductListResult{
		Products:   summaries,
		NextCursor: nextCursor,
	}, nil
}

type productSummaryRecord struct {
	ID         uuid.UUID
	Name       string
	Category   string
	Price      decimal.Decimal
	Stock      int
	ImageURL   sql.NullString
	SellerID   uuid.UUID
	SellerName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r productSummaryRecord) toSummary() ProductSummary {
	return ProductSummary{
		ID:         r.ID,
		Name:       r.Name,
		Category:   r.Category,
		Price:      r.Price,
		Stock:      r.Stock,
		ImageURL:   nullStringPtr(r.ImageURL),
		SellerID:   r.SellerID,
		SellerName: r.SellerName,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func (r *Repository) fetchSellerSummary(ctx context.Context, sellerID uuid.UUID) (*SellerSummary, error) {
	type sellerRow struct {
		SellerID  uuid.UUID
		StoreName string
		Status    string
		LogoURL   sql.NullString
	}

	var row sellerRow
	if err := r.db.WithContext(ctx).Raw(sellerSummaryQuery, sellerID).Scan(&row).Error; err != nil {
		return nil, err
	}

	summary := SellerSummary{
		SellerID:  row.SellerID,
		StoreName: row.StoreName,
		Status:    enums.SellerStatus(row.Status),
	}
	if row.LogoURL.Valid {
		summary.LogoURL = &row.LogoURL.String
	}
	return &summary, nil
}
