package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// helper для создания базовой продажи без позиций.
func makeSale() *domain.Sale {
	return domain.NewSale("SALE-001", time.Now().UTC(), "customer-1", "Ivan Petrov", "branch-1", "Main Branch")
}

// helper для создания валидной позиции.
func makeItem(qty int, price int64) *domain.SaleItem {
	return &domain.SaleItem{
		ID:          uuid.NewString(),
		ProductID:   "product-1",
		ProductName: "Beer",
		Quantity:    qty,
		UnitPrice:   decimal.NewFromInt(price),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestNewSale_Defaults(t *testing.T) {
	sale := domain.NewSale("SALE-001", time.Time{}, "customer-1", "Ivan Petrov", "branch-1", "Main Branch")

	if sale.ID == "" {
		t.Fatal("expected generated id")
	}
	if sale.Status != domain.SaleStatusActive {
		t.Fatalf("expected active status, got %s", sale.Status)
	}
	if sale.SaleDate.IsZero() {
		t.Fatal("expected sale date to be defaulted")
	}
	if sale.CreatedAt.IsZero() || sale.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestSaleAddItem(t *testing.T) {
	sale := makeSale()
	item := makeItem(5, 100)

	if err := sale.AddItem(item); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if len(sale.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sale.Items))
	}
	stored := sale.Items[0]
	if stored.SaleID != sale.ID {
		t.Fatalf("expected back-reference %s, got %s", sale.ID, stored.SaleID)
	}
	if !stored.Discount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10%% discount applied on add, got %s", stored.Discount)
	}
}

func TestSaleAddItem_Nil(t *testing.T) {
	sale := makeSale()

	if err := sale.AddItem(nil); !errors.Is(err, domain.ErrNilItem) {
		t.Fatalf("expected ErrNilItem, got %v", err)
	}
	if len(sale.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(sale.Items))
	}
}

func TestSaleAddItem_QuantityLimit(t *testing.T) {
	sale := makeSale()

	err := sale.AddItem(makeItem(21, 10))
	if !errors.Is(err, domain.ErrQuantityLimitExceeded) {
		t.Fatalf("expected ErrQuantityLimitExceeded, got %v", err)
	}
	if len(sale.Items) != 0 {
		t.Fatalf("rejected item must not be appended, got %d items", len(sale.Items))
	}
}

func TestSaleTotalAmount(t *testing.T) {
	sale := makeSale()
	// qty=3, price=10 — без скидки, 30; qty=4, price=10 — скидка 10%, 36.
	if err := sale.AddItem(makeItem(3, 10)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := sale.AddItem(makeItem(4, 10)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	want := decimal.RequireFromString("66")
	if got := sale.TotalAmount(); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

// Отменённые позиции продолжают учитываться в сумме продажи.
// Тест фиксирует текущее поведение: исключение отменённых позиций требует
// подтверждения продукта.
func TestSaleTotalAmount_IncludesCancelledItems(t *testing.T) {
	sale := makeSale()
	first := makeItem(3, 10)
	if err := sale.AddItem(first); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := sale.AddItem(makeItem(4, 10)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	before := sale.TotalAmount()
	sale.CancelItem(first.ID)

	if got := sale.TotalAmount(); !got.Equal(before) {
		t.Fatalf("cancelled item must still contribute to total: %s vs %s", before, got)
	}
}

func TestSaleRemoveItem(t *testing.T) {
	sale := makeSale()
	item := makeItem(2, 10)
	if err := sale.AddItem(item); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	sale.RemoveItem(item.ID)
	if len(sale.Items) != 0 {
		t.Fatalf("expected item removed, got %d items", len(sale.Items))
	}

	// Повторное удаление — no-op, не ошибка.
	sale.RemoveItem(item.ID)
	sale.RemoveItem("missing-id")
}

func TestSaleCancel_Monotonic(t *testing.T) {
	sale := makeSale()

	sale.Cancel()
	if sale.Status != domain.SaleStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", sale.Status)
	}

	sale.Cancel()
	if sale.Status != domain.SaleStatusCancelled {
		t.Fatalf("status must stay cancelled, got %s", sale.Status)
	}
}

func TestSaleCancelItem(t *testing.T) {
	sale := makeSale()
	item := makeItem(2, 10)
	if err := sale.AddItem(item); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	sale.CancelItem(item.ID)

	stored := sale.Item(item.ID)
	if stored == nil {
		t.Fatal("expected item to stay in the sale after cancellation")
	}
	if !stored.IsCancelled {
		t.Fatal("expected item cancelled flag to be set")
	}
	if sale.Status != domain.SaleStatusActive {
		t.Fatalf("item cancellation must not touch sale status, got %s", sale.Status)
	}
}

func TestSaleCancelItem_UnknownID(t *testing.T) {
	sale := makeSale()
	if err := sale.AddItem(makeItem(2, 10)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	itemsBefore := len(sale.Items)

	sale.CancelItem("missing-id")

	if len(sale.Items) != itemsBefore {
		t.Fatalf("item set must stay unchanged, got %d items", len(sale.Items))
	}
	if sale.Status != domain.SaleStatusActive {
		t.Fatalf("status must stay unchanged, got %s", sale.Status)
	}
	if sale.Items[0].IsCancelled {
		t.Fatal("existing item must stay untouched")
	}
}

func TestSaleValidate_NoItems(t *testing.T) {
	sale := makeSale()

	result := sale.Validate()
	if result.IsValid() {
		t.Fatal("expected validation error for sale without items")
	}

	found := false
	for _, verr := range result.Errors {
		if verr.Field == "Items" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected Items error, got %s", result.Join())
	}

	// Одна валидная позиция делает продажу валидной.
	if err := sale.AddItem(makeItem(1, 10)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if result := sale.Validate(); !result.IsValid() {
		t.Fatalf("expected valid sale, got %s", result.Join())
	}
}

func TestSaleValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(s *domain.Sale)
		field string
	}{
		{
			name:  "no sale number",
			mut:   func(s *domain.Sale) { s.SaleNumber = "" },
			field: "SaleNumber",
		},
		{
			name:  "no customer id",
			mut:   func(s *domain.Sale) { s.CustomerID = "" },
			field: "CustomerId",
		},
		{
			name:  "no customer name",
			mut:   func(s *domain.Sale) { s.CustomerName = "" },
			field: "CustomerName",
		},
		{
			name:  "no branch id",
			mut:   func(s *domain.Sale) { s.BranchID = "" },
			field: "BranchId",
		},
		{
			name:  "no branch name",
			mut:   func(s *domain.Sale) { s.BranchName = "" },
			field: "BranchName",
		},
		{
			name:  "no sale date",
			mut:   func(s *domain.Sale) { s.SaleDate = time.Time{} },
			field: "SaleDate",
		},
		{
			name:  "invalid item",
			mut:   func(s *domain.Sale) { s.Items[0].Quantity = 0 },
			field: "Quantity",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sale := makeSale()
			if err := sale.AddItem(makeItem(1, 10)); err != nil {
				t.Fatalf("add item failed: %v", err)
			}
			tc.mut(sale)

			result := sale.Validate()
			if result.IsValid() {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}

			found := false
			for _, verr := range result.Errors {
				if verr.Field == tc.field {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected error for field %s, got %s", tc.field, result.Join())
			}
		})
	}
}
