package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	saleTransitions  *prometheus.CounterVec
	stockAdjustments *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	guardDenials     *prometheus.CounterVec
}

// New builds and registers the instruments on the given registerer.
func New(registerer prometheus.Registerer, cfg Config) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "vendly"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendly_http_requests_total",
		Help:        "HTTP requests by route, method and status.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "vendly_http_request_duration_seconds",
		Help:        "HTTP request latency by route and method.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"route", "method"})
	saleTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendly_sale_transitions_total",
		Help:        "Sale status transitions by previous and next status.",
		ConstLabels: constLabels,
	}, []string{"from", "to"})
	stockAdjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendly_stock_adjustments_total",
		Help:        "Stock debits and credits applied by sale and purchase flows.",
		ConstLabels: constLabels,
	}, []string{"direction", "source"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendly_billing_webhook_events_total",
		Help:        "Billing webhook events by type and outcome.",
		ConstLabels: constLabels,
	}, []string{"event_type", "outcome"})
	guardDenials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendly_guard_denials_total",
		Help:        "Route guard denials by predicate.",
		ConstLabels: constLabels,
	}, []string{"predicate"})

	collectors := []prometheus.Collector{
		httpRequests,
		httpDuration,
		saleTransitions,
		stockAdjustments,
		webhookEvents,
		guardDenials,
	}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &Metrics{
		httpRequests:     httpRequests,
		httpDuration:     httpDuration,
		saleTransitions:  saleTransitions,
		stockAdjustments: stockAdjustments,
		webhookEvents:    webhookEvents,
		guardDenials:     guardDenials,
	}, nil
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequests.WithLabelValues(route, method, status).Inc()
		m.httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// RecordSaleTransition increments sale status transition counts.
func (m *Metrics) RecordSaleTransition(from, to string) {
	if m == nil {
		return
	}
	m.saleTransitions.WithLabelValues(strings.TrimSpace(from), strings.TrimSpace(to)).Inc()
}

// RecordStockAdjustment increments stock adjustment counts.
// direction is "debit" or "credit"; source is "sale" or "purchase".
func (m *Metrics) RecordStockAdjustment(direction, source string) {
	if m == nil {
		return
	}
	m.stockAdjustments.WithLabelValues(strings.TrimSpace(direction), strings.TrimSpace(source)).Inc()
}

// RecordWebhookEvent increments billing webhook event counts.
func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(strings.TrimSpace(eventType), strings.TrimSpace(outcome)).Inc()
}

// RecordGuardDenial increments guard denial counts by predicate name.
func (m *Metrics) RecordGuardDenial(predicate string) {
	if m == nil {
		return
	}
	m.guardDenials.WithLabelValues(strings.TrimSpace(predicate)).Inc()
}
