package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sales/internal/messaging/logpub"
)

// initEventPublisher подключает Kafka, если заданы брокеры, иначе события
// уходят в лог. Недоступность Kafka не мешает запуску: сервис стартует с
// лог-публикатором.
func initEventPublisher(brokers string, logger *log.Entry) (domain.EventPublisher, *kafka.Publisher) {
	brokers = strings.TrimSpace(brokers)
	if brokers == "" {
		logger.Info("kafka brokers are not configured, publishing sale events to log")
		return logpub.NewPublisher(logger.WithField("component", "log-publisher")), nil
	}

	brokerList := strings.Split(brokers, ",")
	publisher, err := kafka.NewPublisher(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka publisher, continuing with log publisher")
		return logpub.NewPublisher(logger.WithField("component", "log-publisher")), nil
	}

	logger.WithField("brokers", brokerList).Info("kafka publisher initialized")
	return publisher, publisher
}
