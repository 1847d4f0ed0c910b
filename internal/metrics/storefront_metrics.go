package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Checkout outcomes.
const (
	CheckoutSubmitted = "submitted"
	CheckoutRejected  = "rejected"
	CheckoutFailed    = "failed"
)

// StorefrontMetrics holds the collectors of the storefront service.
type StorefrontMetrics struct {
	cartMutations  *prometheus.CounterVec
	checkouts      *prometheus.CounterVec
	catalogLoads   *prometheus.CounterVec
	catalogItems   prometheus.Histogram
	activeSessions prometheus.Gauge
	orderEvents    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewStorefrontMetrics registers collectors on the default registry.
func NewStorefrontMetrics() *StorefrontMetrics {
	return NewStorefrontMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		cartMutations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by kind",
		}, []string{"kind"})),
		checkouts: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome",
		}, []string{"outcome"})),
		catalogLoads: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog page loads by outcome",
		}, []string{"outcome"})),
		catalogItems: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_page_items",
			Help:      "Products returned per catalog page",
			Buckets:   []float64{0, 1, 4, 8, 12, 24, 48, 100},
		})),
		activeSessions: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		})),
		orderEvents: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_notifications_total",
			Help:      "Order notifications handled by outcome",
		}, []string{"outcome"})),
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})),
	}
}

// register adds c to registerer, reusing an identical collector that is
// already registered.
func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return c
}

// RecordCartMutation counts one persisted cart change.
func (m *StorefrontMetrics) RecordCartMutation(kind string) {
	m.cartMutations.WithLabelValues(kind).Inc()
}

// RecordCheckout counts a checkout attempt.
func (m *StorefrontMetrics) RecordCheckout(outcome string) {
	m.checkouts.WithLabelValues(outcome).Inc()
}

// RecordCatalogLoad matches the catalog session load observer signature.
func (m *StorefrontMetrics) RecordCatalogLoad(page, items int, err error) {
	if err != nil {
		m.catalogLoads.WithLabelValues("failed").Inc()
		return
	}
	m.catalogLoads.WithLabelValues("loaded").Inc()
	m.catalogItems.Observe(float64(items))
}

func (m *StorefrontMetrics) SessionOpened() {
	m.activeSessions.Inc()
}

func (m *StorefrontMetrics) SessionClosed() {
	m.activeSessions.Dec()
}

// RecordOrderNotification counts a consumed OrderSubmitted event.
func (m *StorefrontMetrics) RecordOrderNotification(outcome string) {
	m.orderEvents.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency per chi route pattern.
func (m *StorefrontMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
