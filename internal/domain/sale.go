package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus описывает жизненный цикл продажи.
type SaleStatus string

const (
	// SaleStatusActive — продажа действует.
	SaleStatusActive SaleStatus = "active"
	// SaleStatusCancelled — продажа отменена; статус терминальный, возврата в active нет.
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Sale агрегирует заголовок продажи и её позиции.
type Sale struct {
	ID string
	// SaleNumber — уникальный бизнес-ключ продажи.
	SaleNumber string
	SaleDate   time.Time
	// CustomerID — внешняя ссылка на клиента; имя денормализовано для отображения.
	CustomerID   string
	CustomerName string
	// BranchID — внешняя ссылка на филиал; имя денормализовано для отображения.
	BranchID   string
	BranchName string
	Status     SaleStatus
	Items      []SaleItem
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSale создаёт активную продажу с заполненными таймстампами.
// Пустая дата продажи заменяется текущим временем.
func NewSale(saleNumber string, saleDate time.Time, customerID, customerName, branchID, branchName string) *Sale {
	now := time.Now().UTC()
	if saleDate.IsZero() {
		saleDate = now
	}
	return &Sale{
		ID:           uuid.NewString(),
		SaleNumber:   saleNumber,
		SaleDate:     saleDate,
		CustomerID:   customerID,
		CustomerName: customerName,
		BranchID:     branchID,
		BranchName:   branchName,
		Status:       SaleStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TotalAmount возвращает сумму продажи как сумму всех позиций.
// Отменённые позиции учитываются: текущее поведение зафиксировано тестами
// и не меняется без подтверждения продукта.
func (s *Sale) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for idx := range s.Items {
		total = total.Add(s.Items[idx].TotalAmount())
	}
	return total
}

// AddItem добавляет позицию: проставляет обратную ссылку, применяет правило
// скидки и обновляет таймстамп изменения.
func (s *Sale) AddItem(item *SaleItem) error {
	if item == nil {
		return ErrNilItem
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.SaleID = s.ID
	if err := item.ApplyDiscount(); err != nil {
		return err
	}

	s.Items = append(s.Items, *item)
	s.touch()
	return nil
}

// RemoveItem удаляет позицию по идентификатору. Отсутствие позиции не ошибка.
func (s *Sale) RemoveItem(itemID string) {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
			s.touch()
			return
		}
	}
}

// Cancel переводит продажу в терминальный статус cancelled.
// Флаги отмены отдельных позиций не затрагиваются.
func (s *Sale) Cancel() {
	s.Status = SaleStatusCancelled
	s.touch()
}

// CancelItem помечает позицию отменённой. Если позиции нет, агрегат молча
// ничего не делает: исход "не найдено" поднимает вызывающий слой.
func (s *Sale) CancelItem(itemID string) {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			s.Items[idx].Cancel()
			s.touch()
			return
		}
	}
}

// Item возвращает позицию по идентификатору или nil, если её нет.
func (s *Sale) Item(itemID string) *SaleItem {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			return &s.Items[idx]
		}
	}
	return nil
}

// Validate проверяет инварианты заголовка и каждую позицию, собирая все
// замечания в один список. Нормальный провал валидации — не ошибка вызова.
func (s *Sale) Validate() ValidationResult {
	var result ValidationResult

	if s.SaleNumber == "" {
		result.add("SaleNumber", "sale number is required")
	}
	if s.CustomerID == "" {
		result.add("CustomerId", "customer id is required")
	}
	if s.CustomerName == "" {
		result.add("CustomerName", "customer name is required")
	}
	if s.BranchID == "" {
		result.add("BranchId", "branch id is required")
	}
	if s.BranchName == "" {
		result.add("BranchName", "branch name is required")
	}
	if s.SaleDate.IsZero() {
		result.add("SaleDate", "sale date is required")
	}
	if len(s.Items) == 0 {
		result.add("Items", "sale must contain at least one item")
	}

	for idx := range s.Items {
		result.merge(s.Items[idx].Validate())
	}

	return result
}

func (s *Sale) touch() {
	s.UpdatedAt = time.Now().UTC()
}
