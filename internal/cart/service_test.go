package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/giftly/giftly-backend/internal/products"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
)

type memorySnapshotStore struct {
	snapshots map[uuid.UUID][]LineItem
	saveErr   error
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{snapshots: map[uuid.UUID][]LineItem{}}
}

func (m *memorySnapshotStore) Load(ctx context.Context, buyerID uuid.UUID) ([]LineItem, error) {
	return m.snapshots[buyerID], nil
}

func (m *memorySnapshotStore) Save(ctx context.Context, buyerID uuid.UUID, items []LineItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshots[buyerID] = append([]LineItem{}, items...)
	return nil
}

func (m *memorySnapshotStore) Delete(ctx context.Context, buyerID uuid.UUID) error {
	delete(m.snapshots, buyerID)
	return nil
}

type stubProductLoader struct {
	products map[uuid.UUID]*product.ProductDTO
}

func (s stubProductLoader) GetProduct(ctx context.Context, productID uuid.UUID) (*product.ProductDTO, error) {
	if dto, ok := s.products[productID]; ok {
		return dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func catalogProduct(sellerID uuid.UUID, price string, stock int) *product.ProductDTO {
	return &product.ProductDTO{
		ID:    uuid.New(),
		Name:  "Catalog Product",
		Price: decimal.RequireFromString(price),
		Stock: stock,
		Seller: product.SellerSummaryDTO{
			SellerID:  sellerID,
			StoreName: "Catalog Store",
		},
	}
}

func buildCartService(t *testing.T, catalog ...*product.ProductDTO) (Service, *memorySnapshotStore) {
	t.Helper()

	loader := stubProductLoader{products: map[uuid.UUID]*product.ProductDTO{}}
	for _, dto := range catalog {
		loader.products[dto.ID] = dto
	}
	store := newMemorySnapshotStore()

	svc, err := NewService(ServiceParams{
		Store:    store,
		Products: loader,
		Policy:   displayPolicy(),
	})
	if err != nil {
		t.Fatalf("build cart service: %v", err)
	}
	return svc, store
}

func TestServiceAddItemPersistsItemsOnly(t *testing.T) {
	sellerID := uuid.New()
	p := catalogProduct(sellerID, "100.00", 10)
	svc, store := buildCartService(t, p)
	buyerID := uuid.New()

	dto, err := svc.AddItem(context.Background(), buyerID, p.ID, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if !dto.Subtotal.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected subtotal 200, got %s", dto.Subtotal)
	}

	persisted := store.snapshots[buyerID]
	if len(persisted) != 1 || persisted[0].Quantity != 2 {
		t.Fatalf("expected persisted snapshot with one item of quantity 2")
	}

	// Reload derives totals from the snapshot rather than trusting storage.
	reloaded, err := svc.GetCart(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if !reloaded.Total.Equal(dto.Total) {
		t.Fatalf("expected reloaded total %s, got %s", dto.Total, reloaded.Total)
	}
	if reloaded.SellerID == nil || *reloaded.SellerID != sellerID {
		t.Fatalf("expected cart locked to seller %s", sellerID)
	}
}

func TestServiceAddItemCrossSellerConflict(t *testing.T) {
	first := catalogProduct(uuid.New(), "100.00", 10)
	other := catalogProduct(uuid.New(), "50.00", 4)
	svc, store := buildCartService(t, first, other)
	buyerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), buyerID, first.ID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}

	_, err := svc.AddItem(context.Background(), buyerID, other.ID, 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for cross-seller add, got %v", err)
	}

	if len(store.snapshots[buyerID]) != 1 {
		t.Fatalf("expected snapshot unchanged after rejection")
	}
}

func TestServiceAddItemValidation(t *testing.T) {
	soldOut := catalogProduct(uuid.New(), "100.00", 0)
	svc, _ := buildCartService(t, soldOut)
	buyerID := uuid.New()

	_, err := svc.AddItem(context.Background(), buyerID, soldOut.ID, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.AddItem(context.Background(), buyerID, soldOut.ID, 1)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for sold-out product, got %v", err)
	}

	_, err = svc.AddItem(context.Background(), buyerID, uuid.New(), 1)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestServiceUpdateAndRemove(t *testing.T) {
	p := catalogProduct(uuid.New(), "100.00", 3)
	svc, store := buildCartService(t, p)
	buyerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), buyerID, p.ID, 2); err != nil {
		t.Fatalf("add item: %v", err)
	}

	dto, err := svc.UpdateQuantity(context.Background(), buyerID, p.ID, 10)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if dto.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity clamped to 3, got %d", dto.Items[0].Quantity)
	}

	dto, err = svc.UpdateQuantity(context.Background(), buyerID, p.ID, 0)
	if err != nil {
		t.Fatalf("update quantity to zero: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected zero-quantity update to remove the item")
	}
	if len(store.snapshots[buyerID]) != 0 {
		t.Fatalf("expected snapshot emptied")
	}
}

func TestServiceClearDeletesSnapshot(t *testing.T) {
	p := catalogProduct(uuid.New(), "100.00", 3)
	svc, store := buildCartService(t, p)
	buyerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), buyerID, p.ID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := svc.Clear(context.Background(), buyerID); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	if _, ok := store.snapshots[buyerID]; ok {
		t.Fatalf("expected snapshot deleted")
	}

	dto, err := svc.GetCart(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(dto.Items) != 0 || !dto.Total.IsZero() {
		t.Fatalf("expected empty cart after clear")
	}
}
