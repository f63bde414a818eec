package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics содержит метрики операций над продажами.
type SalesMetrics struct {
	// Счётчики операций
	salesCreated   prometheus.Counter
	salesModified  prometheus.Counter
	salesCancelled prometheus.Counter
	salesDeleted   prometheus.Counter
	itemsCancelled prometheus.Counter

	// Счётчики ошибок
	validationFailures prometheus.Counter
	conflicts          prometheus.Counter

	// События
	eventsPublished *prometheus.CounterVec
	publishFailures prometheus.Counter

	// Гистограмма времени выполнения операций
	operationDuration *prometheus.HistogramVec

	// Gauge для текущего количества продаж
	activeSales prometheus.Gauge
}

// NewSalesMetrics создаёт новый экземпляр метрик продаж.
func NewSalesMetrics() *SalesMetrics {
	return newSalesMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSalesMetricsWithRegisterer(registerer prometheus.Registerer) *SalesMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SalesMetrics{
		salesCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Total number of sales created",
		}),
		salesModified: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_modified_total",
			Help: "Total number of sales modified",
		}),
		salesCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_cancelled_total",
			Help: "Total number of sales cancelled",
		}),
		salesDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_deleted_total",
			Help: "Total number of sales deleted",
		}),
		itemsCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_items_cancelled_total",
			Help: "Total number of sale items cancelled",
		}),
		validationFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_validation_failures_total",
			Help: "Total number of sales rejected by validation",
		}),
		conflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_conflicts_total",
			Help: "Total number of sale number and version conflicts",
		}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_events_published_total",
			Help: "Total number of domain events published",
		}, []string{"event_type"}),
		publishFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_events_publish_failures_total",
			Help: "Total number of domain events that failed to publish",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "sales_operation_duration_seconds",
			Help:    "Duration of sale operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		activeSales: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "sales_active",
			Help: "Number of sales currently stored",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordSaleCreated увеличивает счётчик созданных продаж.
func (m *SalesMetrics) RecordSaleCreated() {
	m.salesCreated.Inc()
	m.activeSales.Inc()
}

// RecordSaleModified увеличивает счётчик изменённых продаж.
func (m *SalesMetrics) RecordSaleModified() {
	m.salesModified.Inc()
}

// RecordSaleCancelled увеличивает счётчик отменённых продаж.
func (m *SalesMetrics) RecordSaleCancelled() {
	m.salesCancelled.Inc()
}

// RecordSaleDeleted увеличивает счётчик удалённых продаж.
func (m *SalesMetrics) RecordSaleDeleted() {
	m.salesDeleted.Inc()
	m.activeSales.Dec()
}

// RecordItemCancelled увеличивает счётчик отменённых позиций.
func (m *SalesMetrics) RecordItemCancelled() {
	m.itemsCancelled.Inc()
}

// RecordValidationFailure увеличивает счётчик отклонённых валидацией продаж.
func (m *SalesMetrics) RecordValidationFailure() {
	m.validationFailures.Inc()
}

// RecordConflict увеличивает счётчик конфликтов бизнес-ключа и версий.
func (m *SalesMetrics) RecordConflict() {
	m.conflicts.Inc()
}

// RecordEventPublished увеличивает счётчик опубликованных событий.
func (m *SalesMetrics) RecordEventPublished(eventType string) {
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

// RecordPublishFailure увеличивает счётчик неудачных публикаций.
func (m *SalesMetrics) RecordPublishFailure() {
	m.publishFailures.Inc()
}

// RecordOperationDuration записывает время выполнения операции.
func (m *SalesMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
