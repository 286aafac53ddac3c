package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"parcel-delivery/internal/metrics"
	testlog "parcel-delivery/internal/testutil"
)

func newMetrics() HTTPMetrics {
	return HTTPMetrics{Requests: metrics.NewHTTPRequestsTotal(), Duration: metrics.NewHTTPRequestDuration()}
}

func TestObservability_UsesRoutePatternForLabels(t *testing.T) {
	t.Parallel()

	m := newMetrics()
	pattern := "/deliveries/{delivery_id}/problems"
	r := chi.NewRouter()
	r.Use(Observability(nil, m))
	r.Get(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deliveries/"+id+"/problems", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	require.Equal(t, float64(3), testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, pattern, "204")))
	require.Equal(t, 1, testutil.CollectAndCount(m.Requests))
	require.Equal(t, uint64(3), histogramCount(t, m.Duration, http.MethodGet, pattern, "204"))
}

func TestObservability_LogsServerErrorsAtErrorLevel(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	r := chi.NewRouter()
	r.Use(Observability(rec.Logger(), newMetrics()))
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	entries := rec.ByMsg("http request")
	require.Len(t, entries, 2)
	require.Equal(t, "error", entries[0].Level)
	require.Equal(t, "info", entries[1].Level)
	status, ok := entries[1].Field("status")
	require.True(t, ok)
	require.Equal(t, http.StatusOK, status)
}

func histogramCount(t *testing.T, hv *prometheus.HistogramVec, method, path, status string) uint64 {
	t.Helper()

	obs, err := hv.GetMetricWithLabelValues(method, path, status)
	require.NoError(t, err)

	metric, ok := obs.(prometheus.Metric)
	require.True(t, ok, "must implement prometheus.Metric")

	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))

	h := m.GetHistogram()
	require.NotNil(t, h)
	return h.GetSampleCount()
}
