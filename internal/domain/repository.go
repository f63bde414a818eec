package domain

// SortField перечисляет поля сортировки постраничной выборки продаж.
type SortField string

const (
	SortBySaleDate     SortField = "saledate"
	SortByTotalAmount  SortField = "totalamount"
	SortByCustomerName SortField = "customername"
	SortByBranchName   SortField = "branchname"
	SortBySaleNumber   SortField = "salenumber"
)

// SortOrder задаёт направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const defaultPageSize = 10

// PageRequest описывает параметры постраничной выборки продаж.
type PageRequest struct {
	Page   int
	Size   int
	SortBy SortField
	Order  SortOrder
}

// Normalize приводит запрос к допустимым значениям: страница от 1, размер по
// умолчанию, неизвестное поле сортировки откатывается к saledate desc.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	switch p.SortBy {
	case SortBySaleDate, SortByTotalAmount, SortByCustomerName, SortByBranchName, SortBySaleNumber:
		if p.Order != SortAsc && p.Order != SortDesc {
			p.Order = SortAsc
		}
	default:
		p.SortBy = SortBySaleDate
		p.Order = SortDesc
	}
	return p
}

// SaleRepository описывает требования к хранилищу продаж.
type SaleRepository interface {
	// Create сохраняет новую продажу. Возвращает ErrSaleNumberConflict,
	// если бизнес-ключ уже занят, и ErrSaleIDConflict при повторном
	// идентификаторе.
	Create(sale Sale) error
	// Get возвращает продажу по идентификатору или ErrSaleNotFound.
	Get(id string) (Sale, error)
	// GetBySaleNumber ищет продажу по бизнес-ключу или возвращает ErrSaleNotFound.
	GetBySaleNumber(number string) (Sale, error)
	// ListByCustomer возвращает продажи клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Sale, error)
	// ListByBranch возвращает продажи филиала с опциональным ограничением на количество.
	ListByBranch(branchID string, limit int) ([]Sale, error)
	// ListPage возвращает страницу продаж с сортировкой.
	ListPage(page PageRequest) ([]Sale, error)
	// Count возвращает общее количество продаж.
	Count() (int, error)
	// Update применяет изменения к продаже с учётом optimistic locking.
	Update(sale Sale) error
	// Delete удаляет продажу вместе с её позициями или возвращает ErrSaleNotFound.
	Delete(id string) error
}
