package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/http/handlers"
	obs "parcel-delivery/internal/http/middleware"
	"parcel-delivery/internal/http/router"
	"parcel-delivery/internal/metrics"
	"parcel-delivery/internal/service/delivery"
)

// lifecycleStub implements the delivery usecase; only the lifecycle calls are wired.
type lifecycleStub struct {
	retrieved [][2]int64
}

func (s *lifecycleStub) Retrieve(_ context.Context, dmID, deliveryID int64) (domain.Delivery, error) {
	s.retrieved = append(s.retrieved, [2]int64{dmID, deliveryID})
	return domain.Delivery{ID: deliveryID, DeliverymanID: dmID}, nil
}

func (s *lifecycleStub) CancelByProblem(context.Context, int64) (domain.Delivery, error) {
	return domain.Delivery{}, apperr.ErrAlreadyCancelled
}

func (s *lifecycleStub) Create(context.Context, delivery.CreateInput) (domain.Delivery, error) {
	panic("unexpected")
}
func (s *lifecycleStub) Get(context.Context, int64) (domain.Delivery, error) { panic("unexpected") }
func (s *lifecycleStub) Update(context.Context, domain.DeliveryUpdate) (domain.Delivery, error) {
	panic("unexpected")
}
func (s *lifecycleStub) Delete(context.Context, int64) error { panic("unexpected") }
func (s *lifecycleStub) List(context.Context, domain.DeliveryFilter, domain.Page) ([]domain.Delivery, int, error) {
	panic("unexpected")
}
func (s *lifecycleStub) ListForDeliveryman(context.Context, int64, bool, domain.Page) ([]domain.Delivery, int, error) {
	panic("unexpected")
}
func (s *lifecycleStub) Deliver(context.Context, int64, int64, int64) (domain.Delivery, error) {
	panic("unexpected")
}
func (s *lifecycleStub) ReportProblem(context.Context, int64, string) (domain.Problem, error) {
	panic("unexpected")
}
func (s *lifecycleStub) ListProblems(context.Context, int64, domain.Page) ([]domain.Problem, int, error) {
	panic("unexpected")
}

func newRouter(t *testing.T, stub *lifecycleStub) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := obs.HTTPMetrics{Requests: metrics.NewHTTPRequestsTotal(), Duration: metrics.NewHTTPRequestDuration()}
	reg.MustRegister(m.Requests, m.Duration)

	return router.New(router.Deps{
		Base:         handlers.New(nil),
		Deliveries:   handlers.NewDeliveryHandler(nil, stub),
		Deliverymen:  handlers.NewDeliverymanHandler(nil, nil),
		Recipients:   handlers.NewRecipientHandler(nil, nil),
		Metrics:      m,
		MetricsRoute: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestNew_Routes(t *testing.T) {
	t.Parallel()

	stub := &lifecycleStub{}
	h := newRouter(t, stub)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/deliverymen/3/retrieve/9", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, [][2]int64{{3, 9}}, stub.retrieved)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/manage/problems/4/cancel-delivery", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"delivery already cancelled"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNew_MetricsExposesRequestCounter(t *testing.T) {
	t.Parallel()

	h := newRouter(t, &lifecycleStub{})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",path="/ping",status="200"} 1`)
}
