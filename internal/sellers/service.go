package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/internal/users"
	"github.com/giftly/giftly-backend/pkg/db"
	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
)

// Service exposes seller registration, profile management, and the admin
// approval queue.
type Service interface {
	Register(ctx context.Context, userID uuid.UUID, input RegisterSellerInput) (*SellerDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SellerDTO, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*SellerDTO, error)
	UpdateProfile(ctx context.Context, sellerID uuid.UUID, input UpdateSellerInput) (*SellerDTO, error)
	ListByStatus(ctx context.Context, status enums.SellerStatus) ([]SellerDTO, error)
	Approve(ctx context.Context, sellerID uuid.UUID) (*SellerDTO, error)
	Reject(ctx context.Context, sellerID uuid.UUID) (*SellerDTO, error)
}

// RegisterSellerInput captures the storefront application payload.
type RegisterSellerInput struct {
	StoreName        string
	StoreDescription *string
}

// UpdateSellerInput captures the allowed storefront fields for mutation.
type UpdateSellerInput struct {
	StoreName        *string
	StoreDescription *string
	LogoURL          *string
	BannerURL        *string
}

type service struct {
	repo     *Repository
	users    *users.Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService builds a seller service with the provided repositories.
func NewService(repo *Repository, usersRepo *users.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		users:    usersRepo,
		dbClient: dbClient,
		now:      time.Now,
	}, nil
}

// Register files a storefront application. The profile starts pending and is
// invisible to buyers until an admin approves it.
func (s *service) Register(ctx context.Context, userID uuid.UUID, input RegisterSellerInput) (*SellerDTO, error) {
	storeName := strings.TrimSpace(input.StoreName)
	if storeName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a seller profile")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing seller")
	}

	var created *models.Seller
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		seller := &models.Seller{
			ID:               uuid.New(),
			UserID:           userID,
			StoreName:        storeName,
			StoreDescription: input.StoreDescription,
			Status:           enums.SellerStatusPending,
		}
		row, err := txRepo.Create(ctx, seller)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert seller")
		}
		created = row

		// The promotion must share the tx: a seller-role user without a
		// seller profile is unreachable state if the insert rolls back.
		if err := s.users.WithTx(tx).UpdateRole(ctx, userID, enums.UserRoleSeller); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user role")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register seller")
	}

	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SellerDTO, error) {
	seller, err := s.loadSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(seller), nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*SellerDTO, error) {
	seller, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return FromModel(seller), nil
}

// UpdateProfile mutates the storefront. A store rename is propagated to the
// denormalized seller_name on the seller's products in the same transaction.
func (s *service) UpdateProfile(ctx context.Context, sellerID uuid.UUID, input UpdateSellerInput) (*SellerDTO, error) {
	seller, err := s.loadSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	renamed := false
	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		if name != seller.StoreName {
			renamed = true
		}
		seller.StoreName = name
	}
	if input.StoreDescription != nil {
		seller.StoreDescription = cloneStringPtr(input.StoreDescription)
	}
	if input.LogoURL != nil {
		seller.StoreLogoURL = cloneStringPtr(input.LogoURL)
	}
	if input.BannerURL != nil {
		seller.StoreBannerURL = cloneStringPtr(input.BannerURL)
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, seller); err != nil {
			return err
		}
		if renamed {
			if err := txRepo.SyncProductSellerName(ctx, seller.ID, seller.StoreName); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller")
	}

	return FromModel(seller), nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.SellerStatus) ([]SellerDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller status")
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sellers")
	}
	dtos := make([]SellerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// Approve moves a pending application to approved and stamps the decision time.
func (s *service) Approve(ctx context.Context, sellerID uuid.UUID) (*SellerDTO, error) {
	seller, err := s.loadSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller.Status == enums.SellerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller is already approved")
	}

	approvedAt := s.now().UTC()
	seller.Status = enums.SellerStatusApproved
	seller.ApprovedAt = &approvedAt

	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve seller")
	}
	return FromModel(seller), nil
}

// Reject declines the application. Rejected sellers stay hidden from buyers.
func (s *service) Reject(ctx context.Context, sellerID uuid.UUID) (*SellerDTO, error) {
	seller, err := s.loadSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller.Status == enums.SellerStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller is already rejected")
	}

	seller.Status = enums.SellerStatusRejected
	seller.ApprovedAt = nil

	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject seller")
	}
	return FromModel(seller), nil
}

func (s *service) loadSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
