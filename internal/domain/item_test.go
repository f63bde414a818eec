package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

func TestDiscountForQuantity(t *testing.T) {
	cases := []struct {
		name    string
		qty     int
		want    int64
		wantErr bool
	}{
		{name: "negative qty gets no discount", qty: -1, want: 0},
		{name: "zero qty gets no discount", qty: 0, want: 0},
		{name: "one item", qty: 1, want: 0},
		{name: "three items", qty: 3, want: 0},
		{name: "four items", qty: 4, want: 10},
		{name: "nine items", qty: 9, want: 10},
		{name: "ten items", qty: 10, want: 20},
		{name: "twenty items", qty: 20, want: 20},
		{name: "over the limit", qty: 21, wantErr: true},
		{name: "far over the limit", qty: 100, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			discount, err := domain.DiscountForQuantity(tc.qty)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrQuantityLimitExceeded) {
					t.Fatalf("expected ErrQuantityLimitExceeded, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !discount.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("expected discount %d, got %s", tc.want, discount)
			}
		})
	}
}

func TestSaleItemApplyDiscount_Idempotent(t *testing.T) {
	item := domain.SaleItem{Quantity: 5, UnitPrice: decimal.NewFromInt(100)}

	if err := item.ApplyDiscount(); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	first := item.Discount

	if err := item.ApplyDiscount(); err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if !item.Discount.Equal(first) {
		t.Fatalf("discount changed between applies: %s vs %s", first, item.Discount)
	}
}

func TestSaleItemApplyDiscount_QuantityLimit(t *testing.T) {
	item := domain.SaleItem{Quantity: 21, UnitPrice: decimal.NewFromInt(10)}

	if err := item.ApplyDiscount(); !errors.Is(err, domain.ErrQuantityLimitExceeded) {
		t.Fatalf("expected ErrQuantityLimitExceeded, got %v", err)
	}
	if !item.Discount.Equal(decimal.Zero) {
		t.Fatalf("discount must stay unchanged on failure, got %s", item.Discount)
	}
}

func TestSaleItemTotalAmount(t *testing.T) {
	cases := []struct {
		name  string
		qty   int
		price int64
		want  string
	}{
		{name: "no discount", qty: 3, price: 10, want: "30"},
		{name: "ten percent tier", qty: 5, price: 100, want: "450"},
		{name: "twenty percent tier", qty: 12, price: 50, want: "480"},
		{name: "tier boundary four", qty: 4, price: 10, want: "36"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := domain.SaleItem{Quantity: tc.qty, UnitPrice: decimal.NewFromInt(tc.price)}
			if err := item.ApplyDiscount(); err != nil {
				t.Fatalf("apply discount failed: %v", err)
			}

			want := decimal.RequireFromString(tc.want)
			if got := item.TotalAmount(); !got.Equal(want) {
				t.Fatalf("expected total %s, got %s", want, got)
			}
		})
	}
}

func TestSaleItemValidate_Ok(t *testing.T) {
	item := domain.SaleItem{
		ID:          "item-1",
		ProductID:   "product-1",
		ProductName: "Beer",
		Quantity:    5,
		UnitPrice:   decimal.NewFromInt(100),
		Discount:    decimal.NewFromInt(10),
	}

	if result := item.Validate(); !result.IsValid() {
		t.Fatalf("expected valid item, got %s", result.Join())
	}
}

func TestSaleItemValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(i *domain.SaleItem)
		field string
	}{
		{
			name:  "no product id",
			mut:   func(i *domain.SaleItem) { i.ProductID = "" },
			field: "ProductId",
		},
		{
			name:  "no product name",
			mut:   func(i *domain.SaleItem) { i.ProductName = "" },
			field: "ProductName",
		},
		{
			name:  "zero quantity",
			mut:   func(i *domain.SaleItem) { i.Quantity = 0 },
			field: "Quantity",
		},
		{
			name:  "negative quantity",
			mut:   func(i *domain.SaleItem) { i.Quantity = -3 },
			field: "Quantity",
		},
		{
			name:  "quantity over limit",
			mut:   func(i *domain.SaleItem) { i.Quantity = 21 },
			field: "Quantity",
		},
		{
			name:  "zero price",
			mut:   func(i *domain.SaleItem) { i.UnitPrice = decimal.Zero },
			field: "UnitPrice",
		},
		{
			name:  "negative price",
			mut:   func(i *domain.SaleItem) { i.UnitPrice = decimal.NewFromInt(-5) },
			field: "UnitPrice",
		},
		{
			name:  "negative discount",
			mut:   func(i *domain.SaleItem) { i.Discount = decimal.NewFromInt(-1) },
			field: "Discount",
		},
		{
			name:  "discount over hundred",
			mut:   func(i *domain.SaleItem) { i.Discount = decimal.NewFromInt(101) },
			field: "Discount",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := domain.SaleItem{
				ID:          "item-1",
				ProductID:   "product-1",
				ProductName: "Beer",
				Quantity:    5,
				UnitPrice:   decimal.NewFromInt(100),
				Discount:    decimal.NewFromInt(10),
			}
			tc.mut(&item)

			result := item.Validate()
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

// Правило скидки и проверка валидности — два независимых прохода по количеству:
// нулевое количество проходит через правило скидки (0%), но отклоняется Validate.
func TestSaleItemQuantityChecksAreIndependent(t *testing.T) {
	item := domain.SaleItem{
		ProductID:   "product-1",
		ProductName: "Beer",
		Quantity:    0,
		UnitPrice:   decimal.NewFromInt(10),
	}

	if err := item.ApplyDiscount(); err != nil {
		t.Fatalf("discount rule must accept non-positive quantity, got %v", err)
	}
	if !item.Discount.Equal(decimal.Zero) {
		t.Fatalf("expected zero discount, got %s", item.Discount)
	}
	if result := item.Validate(); result.IsValid() {
		t.Fatal("validation must reject non-positive quantity")
	}
}
