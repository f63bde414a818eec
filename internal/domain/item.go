package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxItemQuantity — максимальное количество одинаковых товаров в одной позиции.
const MaxItemQuantity = 20

// Скидочные проценты по порогам количества.
var (
	discountTen    = decimal.NewFromInt(10)
	discountTwenty = decimal.NewFromInt(20)
	oneHundred     = decimal.NewFromInt(100)
)

// SaleItem представляет одну позицию продажи.
type SaleItem struct {
	// ID позиции нужен для однозначной идентификации и отмены.
	ID string
	// SaleID — обратная ссылка на продажу-владельца; обычное поле, не объектная связь.
	SaleID string
	// ProductID — внешний идентификатор товара.
	ProductID string
	// ProductName денормализовано из каталога товаров для отображения.
	ProductName string
	// Quantity — количество единиц товара.
	Quantity int
	// UnitPrice — цена за единицу.
	UnitPrice decimal.Decimal
	// Discount — процент скидки (0–100), назначается правилом по количеству.
	Discount decimal.Decimal
	// IsCancelled — флаг отмены позиции; не зависит от статуса самой продажи.
	IsCancelled bool
	// CreatedAt фиксирует момент добавления позиции в продажу.
	CreatedAt time.Time
}

// DiscountForQuantity вычисляет процент скидки по количеству товара.
// Количество <= 0 здесь не отклоняется и даёт 0%: корректность количества
// проверяется отдельным проходом Validate, а не правилом скидки.
func DiscountForQuantity(qty int) (decimal.Decimal, error) {
	switch {
	case qty > MaxItemQuantity:
		return decimal.Zero, ErrQuantityLimitExceeded
	case qty < 4:
		return decimal.Zero, nil
	case qty < 10:
		return discountTen, nil
	default:
		return discountTwenty, nil
	}
}

// ApplyDiscount назначает позиции скидку по правилу количества.
// Повторный вызов с неизменным количеством даёт тот же результат.
func (i *SaleItem) ApplyDiscount() error {
	discount, err := DiscountForQuantity(i.Quantity)
	if err != nil {
		return err
	}
	i.Discount = discount
	return nil
}

// Cancel помечает позицию отменённой. Обратной операции нет.
func (i *SaleItem) Cancel() {
	i.IsCancelled = true
}

// TotalAmount возвращает сумму позиции: количество × цена × (1 − скидка/100).
func (i *SaleItem) TotalAmount() decimal.Decimal {
	gross := decimal.NewFromInt(int64(i.Quantity)).Mul(i.UnitPrice)
	return gross.Mul(decimal.NewFromInt(1).Sub(i.Discount.Div(oneHundred)))
}

// Validate проверяет инварианты позиции и возвращает список замечаний.
func (i *SaleItem) Validate() ValidationResult {
	var result ValidationResult

	if i.ProductID == "" {
		result.add("ProductId", "product id is required")
	}
	if i.ProductName == "" {
		result.add("ProductName", "product name is required")
	}
	if i.Quantity <= 0 {
		result.add("Quantity", "quantity must be greater than 0")
	}
	if i.Quantity > MaxItemQuantity {
		result.add("Quantity", ErrQuantityLimitExceeded.Error())
	}
	if !i.UnitPrice.GreaterThan(decimal.Zero) {
		result.add("UnitPrice", "unit price must be greater than 0")
	}
	if i.Discount.LessThan(decimal.Zero) || i.Discount.GreaterThan(oneHundred) {
		result.add("Discount", "discount must be between 0 and 100")
	}

	return result
}
