package domain

import "time"

// EventType определяет тип доменного события продажи.
type EventType string

const (
	EventTypeSaleCreated   EventType = "sale.created"
	EventTypeSaleModified  EventType = "sale.modified"
	EventTypeSaleCancelled EventType = "sale.cancelled"
	EventTypeItemCancelled EventType = "sale.item_cancelled"
)

// SaleEvent хранит данные публикуемого доменного события.
type SaleEvent struct {
	Type EventType
	// Sale — снимок агрегата на момент события.
	Sale Sale
	// ItemID заполняется только для отмены отдельной позиции.
	ItemID string
	// Reason — необязательная причина отмены в свободной форме.
	Reason   string
	Occurred time.Time
}

// NewSaleEvent собирает событие с текущим временем.
func NewSaleEvent(eventType EventType, sale Sale) SaleEvent {
	return SaleEvent{Type: eventType, Sale: sale, Occurred: time.Now().UTC()}
}

// EventPublisher публикует доменные события наружу.
// Доставка best-effort: вызывающий слой логирует сбой и продолжает работу.
type EventPublisher interface {
	Publish(event SaleEvent) error
}
