// Package metrics содержит prometheus-метрики рабочих сценариев лаборатории.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LabMetrics собирает счётчики заказов, входов и выгрузок отчётов.
type LabMetrics struct {
	ordersSubmitted prometheus.Counter
	submitFailures  prometheus.Counter
	vesselConflicts prometheus.Counter
	submitDuration  prometheus.Histogram
	statusChanges   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	exports         *prometheus.CounterVec
}

// New регистрирует метрики в DefaultRegisterer.
func New() *LabMetrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном реестре. Повторная
// регистрация возвращает уже существующие коллекторы.
func NewWithRegisterer(registerer prometheus.Registerer) *LabMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &LabMetrics{
		ordersSubmitted: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labqc_orders_submitted_total",
			Help: "Total number of orders persisted",
		})),
		submitFailures: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labqc_orders_submit_failures_total",
			Help: "Total number of order submissions that failed",
		})),
		vesselConflicts: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labqc_vessel_code_conflicts_total",
			Help: "Total number of vessel code collisions detected on insert",
		})),
		submitDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "labqc_order_submit_duration_seconds",
			Help:    "Duration of order submission including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		})),
		statusChanges: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labqc_order_status_changes_total",
			Help: "Total number of order status transitions by target status",
		}, []string{"status"})),
		logins: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labqc_logins_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"})),
		exports: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labqc_report_exports_total",
			Help: "Total number of report exports by format",
		}, []string{"format"})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			existing, ok := already.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", already.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderSubmitted учитывает сохранённый заказ и длительность отправки.
func (m *LabMetrics) RecordOrderSubmitted(duration time.Duration) {
	m.ordersSubmitted.Inc()
	m.submitDuration.Observe(duration.Seconds())
}

// RecordSubmitFailure учитывает неудачную отправку заказа.
func (m *LabMetrics) RecordSubmitFailure() {
	m.submitFailures.Inc()
}

// RecordVesselConflict учитывает коллизию кода сосуда.
func (m *LabMetrics) RecordVesselConflict() {
	m.vesselConflicts.Inc()
}

// RecordStatusChange учитывает смену статуса заказа.
func (m *LabMetrics) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordLogin учитывает попытку входа.
func (m *LabMetrics) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordExport учитывает выгрузку отчёта.
func (m *LabMetrics) RecordExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}
