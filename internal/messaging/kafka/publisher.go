package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// Publisher публикует доменные события продаж в Kafka.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

// NewPublisher создает sync-producer с идемпотентной записью и подключает его
// к топику событий продаж.
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all in-sync replicas
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // Для идемпотентности

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Publisher{
		producer: producer,
		topic:    TopicSaleEvents,
		logger:   log.WithField("component", "kafka-publisher"),
	}, nil
}

// Publish сериализует событие и отправляет его в топик продаж. Ключом служит
// идентификатор продажи, чтобы события одного агрегата сохраняли порядок.
func (p *Publisher) Publish(event domain.SaleEvent) error {
	payload, err := json.Marshal(newSaleEventMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.Sale.ID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic":      p.topic,
			"sale_id":    event.Sale.ID,
			"event_type": event.Type,
		}).Error("failed to send sale event to kafka")
		return fmt.Errorf("failed to send sale event: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":      p.topic,
		"sale_id":    event.Sale.ID,
		"event_type": event.Type,
		"partition":  partition,
		"offset":     offset,
	}).Debug("sale event sent to kafka")

	return nil
}

// Close закрывает producer
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

var _ domain.EventPublisher = (*Publisher)(nil)
