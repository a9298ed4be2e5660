package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/pagination"
)

// Service exposes order reads and the seller status update. Order creation
// happens inside checkout submission, not here.
type Service interface {
	GetBuyerOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	GetSellerOrder(ctx context.Context, sellerID, orderID uuid.UUID) (*OrderDTO, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, status string) (*OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds an orders service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetBuyerOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyer orders")
	}
	return buildListResult(rows, params.Limit), nil
}

func (s *service) GetSellerOrder(ctx context.Context, sellerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	rows, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller orders")
	}
	return buildListResult(rows, params.Limit), nil
}

// UpdateStatus accepts any known status value. Sellers drive the lifecycle
// and the system does not police transition order.
func (s *service) UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if order.Status != parsed {
		if err := s.repo.UpdateStatus(ctx, orderID, parsed); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		order.Status = parsed
	}
	return FromModel(order), nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func buildListResult(rows []models.Order, limit int) *OrderListResult {
	pageSize := pagination.NormalizeLimit(limit)

	resultRows := rows
	nextCursor := ""
	if len(rows) > pageSize {
		resultRows = rows[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]OrderSummaryDTO, 0, len(resultRows))
	for _, row := range resultRows {
		summaries = append(summaries, toSummary(row))
	}

	return &OrderListResult{
		Orders:     summaries,
		NextCursor: nextCursor,
	}
}
