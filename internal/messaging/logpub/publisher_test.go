package logpub

import (
	"bytes"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

func TestPublisherWritesEventToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetLevel(log.InfoLevel)

	publisher := NewPublisher(logger.WithField("component", "log-publisher"))

	sale := domain.NewSale("SALE-LOG-1", time.Now().UTC(), "customer-1", "ООО Ромашка", "branch-msk", "Москва")
	event := domain.NewSaleEvent(domain.EventTypeSaleCancelled, *sale)
	event.Reason = "дубликат заказа"

	if err := publisher.Publish(event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"sale event published", "SALE-LOG-1", string(domain.EventTypeSaleCancelled)} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestPublisherDefaultsLogger(t *testing.T) {
	publisher := NewPublisher(nil)

	sale := domain.NewSale("SALE-LOG-2", time.Now().UTC(), "customer-2", "ИП Иванов", "branch-spb", "Санкт-Петербург")
	if err := publisher.Publish(domain.NewSaleEvent(domain.EventTypeSaleCreated, *sale)); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
