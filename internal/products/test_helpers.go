package product

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giftly/giftly-backend/pkg/db/models"
	"github.com/giftly/giftly-backend/pkg/enums"
)

func mustCreateTestUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Repo Tester",
		Email:        fmt.Sprintf("giftly_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.UserRoleSeller,
		IsActive:     true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateTestSeller(t *testing.T, tx *gorm.DB, userID uuid.UUID, status enums.SellerStatus) *models.Seller {
	t.Helper()
	seller := &models.Seller{
		ID:        uuid.New(),
		UserID:    userID,
		StoreName: fmt.Sprintf("Repo Store %s", uuid.NewString()[:8]),
		Status:    status,
	}
	if err := tx.Create(seller).Error; err != nil {
		t.Fatalf("create seller: %v", err)
	}
	return seller
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, sellerID uuid.UUID, sellerName string) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   sellerID,
		SellerName: sellerName,
		Name:       "Test Product",
		Category:   "gift-boxes",
		Price:      decimal.RequireFromString("499.00"),
		Stock:      10,
		Images:     pq.StringArray{"https://cdn.example.com/p/1.png"},
		IsActive:   true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
