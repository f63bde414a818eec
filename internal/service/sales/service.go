package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

// Service оркестрирует операции над продажами: валидацию, хранение,
// публикацию доменных событий и метрики.
type Service struct {
	repo    domain.SaleRepository
	events  domain.EventPublisher
	metrics *metrics.SalesMetrics
	logger  *log.Entry
}

// NewService создает сервис продаж. events и salesMetrics могут быть nil:
// события тогда не публикуются, метрики не пишутся.
func NewService(repo domain.SaleRepository, events domain.EventPublisher, salesMetrics *metrics.SalesMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "sales-service")
	}
	return &Service{
		repo:    repo,
		events:  events,
		metrics: salesMetrics,
		logger:  logger,
	}
}

// ItemInput описывает позицию при создании или обновлении продажи.
type ItemInput struct {
	// ID заполняется при обновлении, чтобы сохранить идентичность позиции.
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateSaleInput описывает данные новой продажи.
type CreateSaleInput struct {
	SaleNumber   string
	SaleDate     time.Time
	CustomerID   string
	CustomerName string
	BranchID     string
	BranchName   string
	Items        []ItemInput
}

// UpdateSaleInput описывает полное обновление продажи: заголовок и состав
// позиций заменяются целиком, номер продажи не меняется.
type UpdateSaleInput struct {
	ID           string
	SaleDate     time.Time
	CustomerID   string
	CustomerName string
	BranchID     string
	BranchName   string
	Items        []ItemInput
}

// ListResult — страница продаж вместе с данными пагинации.
type ListResult struct {
	Sales      []domain.Sale
	Page       int
	Size       int
	TotalItems int
	TotalPages int
}

// Create собирает агрегат, валидирует его и сохраняет.
// Предварительная проверка номера best-effort: гонку закрывает уникальный
// индекс хранилища.
func (s *Service) Create(input CreateSaleInput) (domain.Sale, error) {
	started := time.Now()
	defer s.recordDuration("create", started)

	if _, err := s.repo.GetBySaleNumber(input.SaleNumber); err == nil {
		s.recordConflict()
		return domain.Sale{}, domain.ErrSaleNumberConflict
	} else if !errors.Is(err, domain.ErrSaleNotFound) {
		return domain.Sale{}, fmt.Errorf("check sale number: %w", err)
	}

	sale := domain.NewSale(input.SaleNumber, input.SaleDate,
		input.CustomerID, input.CustomerName, input.BranchID, input.BranchName)
	for idx := range input.Items {
		item := newItemFromInput(input.Items[idx])
		if err := sale.AddItem(&item); err != nil {
			return domain.Sale{}, err
		}
	}

	if result := sale.Validate(); !result.IsValid() {
		s.recordValidationFailure()
		return domain.Sale{}, fmt.Errorf("%w: %s", domain.ErrSaleInvalid, result.Join())
	}

	if err := s.repo.Create(*sale); err != nil {
		if errors.Is(err, domain.ErrSaleNumberConflict) {
			s.recordConflict()
		}
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleCreated()
	}
	s.publish(domain.NewSaleEvent(domain.EventTypeSaleCreated, *sale))

	return *sale, nil
}

// Get возвращает продажу по идентификатору.
func (s *Service) Get(id string) (domain.Sale, error) {
	return s.repo.Get(id)
}

// GetByNumber возвращает продажу по бизнес-ключу.
func (s *Service) GetByNumber(number string) (domain.Sale, error) {
	return s.repo.GetBySaleNumber(number)
}

// List возвращает страницу продаж с метаданными пагинации.
func (s *Service) List(page domain.PageRequest) (ListResult, error) {
	page = page.Normalize()

	sales, err := s.repo.ListPage(page)
	if err != nil {
		return ListResult{}, err
	}

	total, err := s.repo.Count()
	if err != nil {
		return ListResult{}, err
	}

	totalPages := total / page.Size
	if total%page.Size != 0 {
		totalPages++
	}

	return ListResult{
		Sales:      sales,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// ListByCustomer возвращает продажи клиента.
func (s *Service) ListByCustomer(customerID string, limit int) ([]domain.Sale, error) {
	return s.repo.ListByCustomer(customerID, limit)
}

// ListByBranch возвращает продажи филиала.
func (s *Service) ListByBranch(branchID string, limit int) ([]domain.Sale, error) {
	return s.repo.ListByBranch(branchID, limit)
}

// Update заменяет заголовок и позиции продажи целиком, заново применяя
// правило скидки к каждой позиции.
func (s *Service) Update(input UpdateSaleInput) (domain.Sale, error) {
	started := time.Now()
	defer s.recordDuration("update", started)

	sale, err := s.repo.Get(input.ID)
	if err != nil {
		return domain.Sale{}, err
	}

	if !input.SaleDate.IsZero() {
		sale.SaleDate = input.SaleDate
	}
	sale.CustomerID = input.CustomerID
	sale.CustomerName = input.CustomerName
	sale.BranchID = input.BranchID
	sale.BranchName = input.BranchName

	sale.Items = nil
	for idx := range input.Items {
		item := newItemFromInput(input.Items[idx])
		if err := sale.AddItem(&item); err != nil {
			return domain.Sale{}, err
		}
	}

	if result := sale.Validate(); !result.IsValid() {
		s.recordValidationFailure()
		return domain.Sale{}, fmt.Errorf("%w: %s", domain.ErrSaleInvalid, result.Join())
	}

	if err := s.persist(&sale); err != nil {
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleModified()
	}
	s.publish(domain.NewSaleEvent(domain.EventTypeSaleModified, sale))

	return sale, nil
}

// Delete удаляет продажу вместе с позициями.
func (s *Service) Delete(id string) error {
	started := time.Now()
	defer s.recordDuration("delete", started)

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleDeleted()
	}
	return nil
}

// CancelSale переводит продажу в терминальный статус cancelled.
// Повторная отмена идемпотентна: событие публикуется один раз.
func (s *Service) CancelSale(id, reason string) (domain.Sale, error) {
	started := time.Now()
	defer s.recordDuration("cancel_sale", started)

	sale, err := s.repo.Get(id)
	if err != nil {
		return domain.Sale{}, err
	}

	if sale.Status == domain.SaleStatusCancelled {
		return sale, nil
	}

	sale.Cancel()
	if err := s.persist(&sale); err != nil {
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleCancelled()
	}

	event := domain.NewSaleEvent(domain.EventTypeSaleCancelled, sale)
	event.Reason = reason
	s.publish(event)

	return sale, nil
}

// CancelItem помечает позицию продажи отменённой.
func (s *Service) CancelItem(saleID, itemID, reason string) (domain.Sale, error) {
	started := time.Now()
	defer s.recordDuration("cancel_item", started)

	sale, err := s.repo.Get(saleID)
	if err != nil {
		return domain.Sale{}, err
	}

	item := sale.Item(itemID)
	if item == nil {
		return domain.Sale{}, domain.ErrItemNotFound
	}
	if item.IsCancelled {
		return domain.Sale{}, domain.ErrItemAlreadyCancelled
	}

	sale.CancelItem(itemID)
	if err := s.persist(&sale); err != nil {
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordItemCancelled()
	}

	event := domain.NewSaleEvent(domain.EventTypeItemCancelled, sale)
	event.ItemID = itemID
	event.Reason = reason
	s.publish(event)

	return sale, nil
}

// persist сохраняет агрегат и синхронизирует версию с хранилищем,
// увеличившим её при записи.
func (s *Service) persist(sale *domain.Sale) error {
	if err := s.repo.Update(*sale); err != nil {
		if domain.IsVersionConflict(err) {
			s.recordConflict()
		}
		return err
	}
	sale.Version++
	return nil
}

// publish отправляет событие best-effort: сбой логируется, операция не
// откатывается.
func (s *Service) publish(event domain.SaleEvent) {
	if s.events == nil {
		return
	}

	if err := s.events.Publish(event); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPublishFailure()
		}
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": event.Type,
			"sale_id":    event.Sale.ID,
		}).Warn("failed to publish sale event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordEventPublished(string(event.Type))
	}
}

func (s *Service) recordDuration(operation string, started time.Time) {
	if s.metrics != nil {
		s.metrics.RecordOperationDuration(operation, time.Since(started))
	}
}

func (s *Service) recordValidationFailure() {
	if s.metrics != nil {
		s.metrics.RecordValidationFailure()
	}
}

func (s *Service) recordConflict() {
	if s.metrics != nil {
		s.metrics.RecordConflict()
	}
}

func newItemFromInput(input ItemInput) domain.SaleItem {
	return domain.SaleItem{
		ID:          input.ID,
		ProductID:   input.ProductID,
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
	}
}
