package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	product "github.com/giftly/giftly-backend/internal/products"
	"github.com/giftly/giftly-backend/pkg/config"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
)

// Service exposes the per-buyer cart operations. Every mutation loads the
// snapshot, applies the change, recomputes totals and persists the items.
type Service interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

type productLoader interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*product.ProductDTO, error)
}

type snapshotStore interface {
	Load(ctx context.Context, buyerID uuid.UUID) ([]LineItem, error)
	Save(ctx context.Context, buyerID uuid.UUID, items []LineItem) error
	Delete(ctx context.Context, buyerID uuid.UUID) error
}

type service struct {
	store    snapshotStore
	products productLoader
	policy   Policy
}

// ServiceParams bundles the cart service dependencies.
type ServiceParams struct {
	Store    snapshotStore
	Products productLoader
	Policy   Policy
}

// PolicyFromConfig lifts the parsed display policy out of the app config.
func PolicyFromConfig(cfg config.CartConfig) Policy {
	return Policy{
		TaxRate:     cfg.Rate(),
		ShippingFee: cfg.Fee(),
	}
}

// NewService builds a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		policy:   params.Policy,
	}, nil
}

func (s *service) GetCart(ctx context.Context, buyerID uuid.UUID) (*CartDTO, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(c), nil
}

func (s *service) AddItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	dto, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	snapshot := productSnapshot(dto)

	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if !c.AddItem(snapshot, quantity) {
		if sellerID, ok := c.SellerID(); ok && sellerID != snapshot.SellerID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart items must come from a single seller")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	if err := s.store.Save(ctx, buyerID, c.Items()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
	}
	return NewCartDTO(c), nil
}

func (s *service) UpdateQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	c.UpdateQuantity(productID, quantity)

	if err := s.store.Save(ctx, buyerID, c.Items()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
	}
	return NewCartDTO(c), nil
}

func (s *service) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*CartDTO, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(productID)

	if err := s.store.Save(ctx, buyerID, c.Items()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
	}
	return NewCartDTO(c), nil
}

func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.store.Delete(ctx, buyerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, buyerID uuid.UUID) (*Cart, error) {
	items, err := s.store.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return Restore(s.policy, items), nil
}

func productSnapshot(dto *product.ProductDTO) Product {
	var imageURL *string
	if len(dto.Images) > 0 {
		url := dto.Images[0]
		imageURL = &url
	}
	return Product{
		ID:         dto.ID,
		SellerID:   dto.Seller.SellerID,
		SellerName: dto.Seller.StoreName,
		Name:       dto.Name,
		Price:      dto.Price,
		Stock:      dto.Stock,
		ImageURL:   imageURL,
	}
}
