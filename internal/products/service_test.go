package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
)

func TestApplyUpdateToProductTrimsAndCopies(t *testing.T) {
	product := &models.Product{
		Name:     "old name",
		Category: "old-category",
		Images:   []string{"old.png"},
	}

	images := []string{"a.png", "b.png"}
	price := decimal.NewFromInt(499)

	input := UpdateProductInput{
		Name:     stringPtr("  New Name "),
		Category: stringPtr("gift-boxes"),
		Price:    &price,
		Images:   &images,
	}

	applyUpdateToProduct(product, input)

	if product.Name != "New Name" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if product.Category != "gift-boxes" {
		t.Fatalf("expected category gift-boxes, got %s", product.Category)
	}
	if !product.Price.Equal(price) {
		t.Fatalf("expected price %s, got %s", price, product.Price)
	}
	if len(product.Images) != len(images) {
		t.Fatalf("expected %d images, got %d", len(images), len(product.Images))
	}
	for i, val := range product.Images {
		if val != images[i] {
			t.Fatalf("expected image %q at %d, got %q", images[i], i, val)
		}
	}

	images[0] = "mutated.png"
	if product.Images[0] == "mutated.png" {
		t.Fatal("expected images to be copied, not aliased")
	}
}

func TestValidatePrice(t *testing.T) {
	if err := validatePrice(decimal.NewFromInt(-1)); err == nil {
		t.Fatal("expected validation error for negative price")
	}
	if err := validatePrice(decimal.Zero); err != nil {
		t.Fatalf("expected no error for zero price, got %v", err)
	}
}

func TestValidateStock(t *testing.T) {
	if err := validateStock(-1); err == nil {
		t.Fatal("expected validation error for negative stock")
	}
	if err := validateStock(0); err != nil {
		t.Fatalf("expected no error for zero stock, got %v", err)
	}
}

func TestEnsureApprovedSeller(t *testing.T) {
	approvedID := uuid.New()
	pendingID := uuid.New()

	repo := &fakeSellerLoader{
		rows: map[uuid.UUID]*models.Seller{
			approvedID: {
				ID:        approvedID,
				StoreName: "Gift Haven",
				Status:    enums.SellerStatusApproved,
			},
			pendingID: {
				ID:        pendingID,
				StoreName: "Waiting Room",
				Status:    enums.SellerStatusPending,
			},
		},
	}
	svc := &service{sellerRepo: repo}

	t.Run("approved", func(t *testing.T) {
		seller, err := svc.ensureApprovedSeller(context.Background(), approvedID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seller.StoreName != "Gift Haven" {
			t.Fatalf("unexpected store name %q", seller.StoreName)
		}
	})

	t.Run("pending", func(t *testing.T) {
		_, err := svc.ensureApprovedSeller(context.Background(), pendingID)
		if err == nil {
			t.Fatal("expected forbidden error for pending seller")
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected forbidden error code, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.ensureApprovedSeller(context.Background(), uuid.New())
		if err == nil {
			t.Fatal("expected not found error for unknown seller")
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found error code, got %v", err)
		}
	})
}

func TestNewProductDTOFallsBackToDenormalizedSeller(t *testing.T) {
	sellerID := uuid.New()
	product := &models.Product{
		ID:         uuid.New(),
		SellerID:   sellerID,
		SellerName: "Gift Haven",
		Name:       "Scented Candle Set",
		Price:      decimal.RequireFromString("899.00"),
		Stock:      12,
	}

	dto := NewProductDTO(product, nil)
	if dto.Seller.SellerID != sellerID {
		t.Fatalf("expected seller id %s, got %s", sellerID, dto.Seller.SellerID)
	}
	if dto.Seller.StoreName != "Gift Haven" {
		t.Fatalf("expected denormalized store name, got %q", dto.Seller.StoreName)
	}
}

type fakeSellerLoader struct {
	rows map[uuid.UUID]*models.Seller
}

func (f *fakeSellerLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	if row, ok := f.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func stringPtr(value string) *string {
	return &value
}
