package domain

import "errors"

var (
	// ErrNilItem возвращается при попытке добавить отсутствующую позицию.
	ErrNilItem = errors.New("sale item is required")
	// ErrQuantityLimitExceeded — жёсткий бизнес-потолок количества одинаковых товаров.
	ErrQuantityLimitExceeded = errors.New("cannot sell more than 20 identical items")
	// ErrSaleInvalid сигнализирует о непройденной валидации агрегата.
	ErrSaleInvalid = errors.New("sale validation failed")
	// ErrSaleNotFound возвращается, если продажа не найдена в репозитории.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrSaleNumberConflict — номер продажи уже занят (уникальный бизнес-ключ).
	ErrSaleNumberConflict = errors.New("sale number already exists")
	// ErrSaleIDConflict — продажа с таким идентификатором уже сохранена.
	ErrSaleIDConflict = errors.New("sale id already exists")
	// ErrSaleVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrSaleVersionConflict = errors.New("sale version conflict")
	// ErrItemNotFound возвращается оркестрацией, если позиция не найдена в продаже.
	ErrItemNotFound = errors.New("sale item not found")
	// ErrItemAlreadyCancelled — позиция уже отменена, повторная отмена не выполняется.
	ErrItemAlreadyCancelled = errors.New("sale item is already cancelled")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrSaleVersionConflict)
}
