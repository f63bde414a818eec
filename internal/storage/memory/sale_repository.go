package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// saleRepositoryInMemory — простая in-memory реализация SaleRepository.
type saleRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Sale
}

// NewSaleRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewSaleRepository() domain.SaleRepository {
	return &saleRepositoryInMemory{
		items: make(map[string]domain.Sale),
	}
}

// Create сохраняет новую продажу, проверяя уникальность ID и номера продажи.
func (r *saleRepositoryInMemory) Create(sale domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[sale.ID]; exists {
		return domain.ErrSaleIDConflict
	}
	for _, existing := range r.items {
		if existing.SaleNumber == sale.SaleNumber {
			return domain.ErrSaleNumberConflict
		}
	}

	r.items[sale.ID] = cloneSale(sale)
	return nil
}

// Get возвращает продажу или ErrSaleNotFound, если её нет.
func (r *saleRepositoryInMemory) Get(id string) (domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sale, ok := r.items[id]
	if !ok {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return cloneSale(sale), nil
}

// GetBySaleNumber ищет продажу по бизнес-ключу.
func (r *saleRepositoryInMemory) GetBySaleNumber(number string) (domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sale := range r.items {
		if sale.SaleNumber == number {
			return cloneSale(sale), nil
		}
	}
	return domain.Sale{}, domain.ErrSaleNotFound
}

// ListByCustomer возвращает продажи клиента, ограничивая выборку limit (если >0).
func (r *saleRepositoryInMemory) ListByCustomer(customerID string, limit int) ([]domain.Sale, error) {
	return r.listFiltered(func(s domain.Sale) bool { return s.CustomerID == customerID }, limit), nil
}

// ListByBranch возвращает продажи филиала, ограничивая выборку limit (если >0).
func (r *saleRepositoryInMemory) ListByBranch(branchID string, limit int) ([]domain.Sale, error) {
	return r.listFiltered(func(s domain.Sale) bool { return s.BranchID == branchID }, limit), nil
}

// ListPage возвращает страницу продаж, отсортированную по запрошенному полю.
func (r *saleRepositoryInMemory) ListPage(page domain.PageRequest) ([]domain.Sale, error) {
	page = page.Normalize()

	r.mu.RLock()
	all := make([]domain.Sale, 0, len(r.items))
	for _, sale := range r.items {
		all = append(all, cloneSale(sale))
	}
	r.mu.RUnlock()

	sortSales(all, page.SortBy, page.Order)

	offset := (page.Page - 1) * page.Size
	if offset >= len(all) {
		return []domain.Sale{}, nil
	}
	end := offset + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Count возвращает общее количество продаж.
func (r *saleRepositoryInMemory) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

// Update перезаписывает продажу, проверяя версию (optimistic locking).
func (r *saleRepositoryInMemory) Update(sale domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[sale.ID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	if current.Version != sale.Version {
		return domain.ErrSaleVersionConflict
	}

	// Инкрементируем версию перед сохранением.
	sale.Version++
	r.items[sale.ID] = cloneSale(sale)
	return nil
}

// Delete удаляет продажу вместе с позициями.
func (r *saleRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrSaleNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *saleRepositoryInMemory) listFiltered(match func(domain.Sale) bool, limit int) []domain.Sale {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Sale, 0, len(r.items))
	for _, sale := range r.items {
		if !match(sale) {
			continue
		}
		result = append(result, cloneSale(sale))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SaleDate.Equal(result[j].SaleDate) {
			return result[i].SaleDate.After(result[j].SaleDate)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}

// sortSales сортирует выборку по полю и направлению из PageRequest.
func sortSales(sales []domain.Sale, field domain.SortField, order domain.SortOrder) {
	less := func(i, j int) bool {
		a, b := sales[i], sales[j]
		switch field {
		case domain.SortByTotalAmount:
			if cmp := a.TotalAmount().Cmp(b.TotalAmount()); cmp != 0 {
				return cmp < 0
			}
		case domain.SortByCustomerName:
			if a.CustomerName != b.CustomerName {
				return a.CustomerName < b.CustomerName
			}
		case domain.SortByBranchName:
			if a.BranchName != b.BranchName {
				return a.BranchName < b.BranchName
			}
		case domain.SortBySaleNumber:
			if a.SaleNumber != b.SaleNumber {
				return a.SaleNumber < b.SaleNumber
			}
		default:
			if !a.SaleDate.Equal(b.SaleDate) {
				return a.SaleDate.Before(b.SaleDate)
			}
		}
		// Стабильный порядок при равенстве ключа сортировки.
		return a.ID < b.ID
	}

	if order == domain.SortDesc {
		sort.Slice(sales, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.Slice(sales, less)
}

// cloneSale делает глубокую копию, чтобы избежать непредсказуемых мутаций извне.
func cloneSale(sale domain.Sale) domain.Sale {
	clone := sale
	clone.Items = make([]domain.SaleItem, len(sale.Items))
	copy(clone.Items, sale.Items)
	return clone
}

var _ domain.SaleRepository = (*saleRepositoryInMemory)(nil)
