package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/sales/internal/health"
	"github.com/vladislavdragonenkov/sales/internal/version"
)

// Драйверы хранилища продаж.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr         string
	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	KafkaBrokers        string
}

// DefaultConfig возвращает конфигурацию для локального запуска:
// память вместо базы, без Kafka.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:   ":9090",
		StorageDriver: StorageDriverMemory,
	}
}

// Run собирает зависимости и обслуживает метрики и health-пробы до отмены
// контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	registerHealthCheckers(healthHandler, deps)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	logger.WithFields(log.Fields{
		"storage": cfg.StorageDriver,
		"version": version.String(),
	}).Info("sales service started")

	<-ctx.Done()
	logger.Info("получен сигнал остановки, завершаем работу")
	shutdownHTTP(metricsSrv, logger)

	return ctx.Err()
}

// registerHealthCheckers подключает readiness-проверки хранилища и сервиса.
func registerHealthCheckers(handler *healthcheck.Handler, deps *Dependencies) {
	if deps.Store != nil {
		handler.RegisterChecker("postgres", healthcheck.NewStoreChecker(deps.Store, 2*time.Second))
	}
	handler.RegisterChecker("repository", healthcheck.NewRepositoryChecker(deps.Repo))
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
