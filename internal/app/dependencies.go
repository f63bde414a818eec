package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
	salessvc "github.com/vladislavdragonenkov/sales/internal/service/sales"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
	"github.com/vladislavdragonenkov/sales/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Repo      domain.SaleRepository
	Publisher domain.EventPublisher
	Service   *salessvc.Service
	Metrics   *metrics.SalesMetrics

	// Store не nil только для postgres-драйвера.
	Store *postgres.Store
	// kafkaPublisher хранится отдельно ради Close.
	kafkaPublisher *kafka.Publisher
}

// initRuntimeDependencies собирает хранилище, публикатор событий и сервис
// по конфигурации.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	deps := &Dependencies{}

	repo, store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.Repo = repo
	deps.Store = store

	publisher, kafkaPublisher := initEventPublisher(cfg.KafkaBrokers, logger)
	deps.Publisher = publisher
	deps.kafkaPublisher = kafkaPublisher

	deps.Metrics = metrics.NewSalesMetrics()
	deps.Service = salessvc.NewService(repo, publisher, deps.Metrics, logger.WithField("layer", "service"))

	return deps, nil
}

// initStorage выбирает реализацию репозитория по драйверу.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.SaleRepository, *postgres.Store, error) {
	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		logger.Info("используется in-memory хранилище продаж")
		return memory.NewSaleRepository(), nil, nil
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres миграции применены")
		}
		logger.Info("используется postgres хранилище продаж")
		return postgres.NewSaleRepository(store), store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close(logger *log.Entry) {
	if d.kafkaPublisher != nil {
		if err := d.kafkaPublisher.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka publisher")
		} else {
			logger.Info("kafka publisher closed")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
