package logpub

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// Publisher пишет доменные события в лог вместо брокера. Используется как
// запасной вариант, когда Kafka не сконфигурирована, и в локальной разработке.
type Publisher struct {
	logger *log.Entry
}

// NewPublisher создает лог-публикатор событий продаж.
func NewPublisher(logger *log.Entry) *Publisher {
	if logger == nil {
		logger = log.WithField("component", "log-publisher")
	}
	return &Publisher{logger: logger}
}

// Publish записывает событие в лог и всегда завершается успешно.
func (p *Publisher) Publish(event domain.SaleEvent) error {
	entry := p.logger.WithFields(log.Fields{
		"event_type":  event.Type,
		"sale_id":     event.Sale.ID,
		"sale_number": event.Sale.SaleNumber,
		"occurred_at": event.Occurred,
	})
	if event.ItemID != "" {
		entry = entry.WithField("item_id", event.ItemID)
	}
	if event.Reason != "" {
		entry = entry.WithField("reason", event.Reason)
	}
	entry.Info("sale event published")

	return nil
}

var _ domain.EventPublisher = (*Publisher)(nil)
