package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, metric prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metric.Write(&m))
	switch {
	case m.Counter != nil:
		return m.GetCounter().GetValue()
	case m.Gauge != nil:
		return m.GetGauge().GetValue()
	case m.Histogram != nil:
		return float64(m.GetHistogram().GetSampleCount())
	}
	return 0
}

func newTestMetrics() *StorefrontMetrics {
	return NewStorefrontMetricsWithRegisterer(prometheus.NewRegistry())
}

func TestRecordCartMutation(t *testing.T) {
	m := newTestMetrics()

	m.RecordCartMutation("added")
	m.RecordCartMutation("added")
	m.RecordCartMutation("cleared")

	assert.Equal(t, 2.0, value(t, m.cartMutations.WithLabelValues("added")))
	assert.Equal(t, 1.0, value(t, m.cartMutations.WithLabelValues("cleared")))
}

func TestRecordCheckout(t *testing.T) {
	m := newTestMetrics()

	m.RecordCheckout(CheckoutSubmitted)
	m.RecordCheckout(CheckoutRejected)

	assert.Equal(t, 1.0, value(t, m.checkouts.WithLabelValues(CheckoutSubmitted)))
	assert.Equal(t, 1.0, value(t, m.checkouts.WithLabelValues(CheckoutRejected)))
	assert.Equal(t, 0.0, value(t, m.checkouts.WithLabelValues(CheckoutFailed)))
}

func TestRecordOrderNotification(t *testing.T) {
	m := newTestMetrics()

	m.RecordOrderNotification("sent")
	m.RecordOrderNotification("sent")
	m.RecordOrderNotification("failed")

	assert.Equal(t, 2.0, value(t, m.orderEvents.WithLabelValues("sent")))
	assert.Equal(t, 1.0, value(t, m.orderEvents.WithLabelValues("failed")))
}

func TestRecordCatalogLoad(t *testing.T) {
	m := newTestMetrics()

	m.RecordCatalogLoad(1, 12, nil)
	m.RecordCatalogLoad(2, 0, errors.New("boom"))

	assert.Equal(t, 1.0, value(t, m.catalogLoads.WithLabelValues("loaded")))
	assert.Equal(t, 1.0, value(t, m.catalogLoads.WithLabelValues("failed")))
	assert.Equal(t, 1.0, value(t, m.catalogItems))
}

func TestSessions(t *testing.T) {
	m := newTestMetrics()

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 1.0, value(t, m.activeSessions))
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewStorefrontMetricsWithRegisterer(registry)
	second := NewStorefrontMetricsWithRegisterer(registry)

	first.RecordCheckout(CheckoutSubmitted)

	assert.Equal(t, 1.0, value(t, second.checkouts.WithLabelValues(CheckoutSubmitted)))
}

func TestMiddleware(t *testing.T) {
	m := newTestMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/5", nil))

	assert.Equal(t, 1.0, value(t, m.httpRequests.WithLabelValues(http.MethodGet, "/api/products/{id}", "404")))
}
