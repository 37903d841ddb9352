package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор метрик сервиса
type Metrics struct {
	gatherer prometheus.Gatherer

	RequestDuration *prometheus.HistogramVec
	Subscriptions   *prometheus.CounterVec
	LedgerEntries   *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	LedgerConflicts prometheus.Counter
}

// Исходы подписки и публикации
const (
	OutcomeSubscribed   = "subscribed"
	OutcomeInsufficient = "insufficient"
	OutcomeFailed       = "failed"

	StatusPublished      = "published"
	StatusFailed         = "failed"
	StatusDeliveryFailed = "delivery_failed"
)

// New создает метрики и регистрирует их в реестре
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		Subscriptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_subscriptions_total",
				Help: "Subscription attempts by outcome",
			},
			[]string{"outcome"},
		),
		LedgerEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entries_total",
				Help: "Ledger entries written by operation kind",
			},
			[]string{"tipo"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscription_notifications_total",
				Help: "Subscription notifications by publish status",
			},
			[]string{"status"},
		),
		LedgerConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_write_conflicts_total",
				Help: "Conditional ledger writes rejected by a concurrent update",
			},
		),
	}

	reg.MustRegister(
		m.RequestDuration,
		m.Subscriptions,
		m.LedgerEntries,
		m.Notifications,
		m.LedgerConflicts,
	)

	return m
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Subscription учитывает исход подписки
func (m *Metrics) Subscription(outcome string) {
	if m == nil {
		return
	}
	m.Subscriptions.WithLabelValues(outcome).Inc()
}

// LedgerEntry учитывает запись журнала
func (m *Metrics) LedgerEntry(tipo string) {
	if m == nil {
		return
	}
	m.LedgerEntries.WithLabelValues(tipo).Inc()
}

// Notification учитывает результат публикации уведомления
func (m *Metrics) Notification(status string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(status).Inc()
}

// Conflict учитывает отклоненную условную запись
func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.LedgerConflicts.Inc()
}
