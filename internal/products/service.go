package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db"
	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
)

// Service exposes catalog reads and seller product management.
type Service interface {
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	SKU         *string
	Images      []string
	IsActive    bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	SKU         *string
	Images      *[]string
	IsActive    *bool
}

type sellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

// service implements the product service.
type service struct {
	repo       *Repository
	dbClient   *db.Client
	sellerRepo sellerLoader
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, sellerRepo sellerLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	return &service{
		repo:       repo,
		dbClient:   dbClient,
		sellerRepo: sellerRepo,
	}, nil
}

// CreateProduct creates a listing for an approved seller.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := validateStock(input.Stock); err != nil {
		return nil, err
	}

	seller, err := s.ensureApprovedSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			ID:          uuid.New(),
			SellerID:    sellerID,
			SellerName:  seller.StoreName,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Category:    input.Category,
			Price:       input.Price,
			Stock:       input.Stock,
			SKU:         input.SKU,
			Images:      append([]string(nil), input.Images...),
			IsActive:    input.IsActive,
		}

		created, err := txRepo.CreateProduct(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = created.ID
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	product, summary, err := s.repo.GetProductDetail(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(product, summary), nil
}

// UpdateProduct mutates an existing listing owned by the seller.
func (s *service) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
	}
	if input.Stock != nil {
		if err := validateStock(*input.Stock); err != nil {
			return nil, err
		}
	}

	if _, err := s.ensureApprovedSeller(ctx, sellerID); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		applyUpdateToProduct(product, input)
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return err
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	updated, summary, err := s.repo.GetProductDetail(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(updated, summary), nil
}

// DeleteProduct removes a listing owned by the seller.
func (s *service) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	if _, err := s.ensureApprovedSeller(ctx, sellerID); err != nil {
		return err
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SellerID != sellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}

	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// GetProduct loads a public product detail. Inactive listings and listings
// from unapproved sellers are treated as missing.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, summary, err := s.repo.GetProductDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	if !product.IsActive || summary == nil || summary.Status != enums.SellerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product, summary), nil
}

// ListProducts pages the public catalog.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	result, err := s.repo.ListProductSummaries(ctx, productListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

// ListSellerProducts returns all listings for the seller dashboard, including inactive ones.
func (s *service) ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error) {
	seller, err := s.loadSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListProductsBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller products")
	}

	summary := &SellerSummary{
		SellerID:  seller.ID,
		StoreName: seller.StoreName,
		Status:    seller.Status,
		LogoURL:   seller.StoreLogoURL,
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i], summary))
	}
	return dtos, nil
}

func (s *service) loadSeller(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error) {
	seller, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}

func (s *service) ensureApprovedSeller(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error) {
	seller, err := s.loadSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller.Status != enums.SellerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not approved")
	}
	return seller, nil
}

func validatePrice(value decimal.Decimal) error {
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	return nil
}

func validateStock(value int) error {
	if value < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.Images != nil {
		product.Images = append([]string(nil), *input.Images...)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
