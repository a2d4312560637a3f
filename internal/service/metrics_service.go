package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for requests and front desk activity.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	checkIns        *prometheus.CounterVec
	staffToggles    *prometheus.CounterVec
	payments        *prometheus.CounterVec
	paymentAmount   *prometheus.CounterVec
	codeCollisions  prometheus.Counter
}

// NewMetricsService registers the Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	checkIns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_sessions_total",
		Help: "Client session consumptions by service type and outcome",
	}, []string{"service_type", "outcome"})

	staffToggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_staff_toggles_total",
		Help: "Staff clock-in/out transitions by action",
	}, []string{"action"})

	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Recorded receipts by service type and kind",
	}, []string{"service_type", "kind"})

	paymentAmount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_amount_egp_total",
		Help: "Collected amount by payment method",
	}, []string{"method"})

	codeCollisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "access_code_mint_failures_total",
		Help: "Registrations that could not reserve a unique code",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		checkIns, staffToggles, payments, paymentAmount, codeCollisions, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		checkIns:        checkIns,
		staffToggles:    staffToggles,
		payments:        payments,
		paymentAmount:   paymentAmount,
		codeCollisions:  codeCollisions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordSessionCheckIn counts a client scan or direct registration. outcome is "ok" or
// the rejection error code.
func (m *MetricsService) RecordSessionCheckIn(serviceType models.ServiceType, outcome string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(string(serviceType), outcome).Inc()
}

// RecordStaffToggle counts a staff transition.
func (m *MetricsService) RecordStaffToggle(action string) {
	if m == nil {
		return
	}
	m.staffToggles.WithLabelValues(action).Inc()
}

// RecordPayment counts a receipt and adds every part to the per-method totals.
func (m *MetricsService) RecordPayment(payment *models.Payment) {
	if m == nil || payment == nil {
		return
	}
	m.payments.WithLabelValues(string(payment.ServiceType), string(payment.Kind)).Inc()
	for _, part := range payment.Parts {
		m.paymentAmount.WithLabelValues(string(part.Method)).Add(toFloat(part.Amount))
	}
}

// RecordCodeMintFailure counts registrations that exhausted the mint retries.
func (m *MetricsService) RecordCodeMintFailure() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
