package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"parcel-delivery/internal/logx"
)

// HTTPMetrics holds request collectors. Nil collectors are skipped.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// Observability records request metrics and writes one access log line per request.
func Observability(logger logx.Logger, m HTTPMetrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// route pattern keeps label cardinality bounded
			path := pathPattern(r)
			tm := time.Since(start)
			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			status := strconv.Itoa(code)

			if m.Requests != nil {
				m.Requests.WithLabelValues(r.Method, path, status).Inc()
			}
			if m.Duration != nil {
				m.Duration.WithLabelValues(r.Method, path, status).Observe(tm.Seconds())
			}

			fields := []logx.Field{
				logx.String("req_id", chimw.GetReqID(r.Context())),
				logx.String("method", r.Method),
				logx.String("path", path),
				logx.Int("status", code),
				logx.Duration("duration", tm),
			}
			if code >= http.StatusInternalServerError {
				logger.Error("http request", fields...)
				return
			}
			logger.Info("http request", fields...)
		})
	}
}

func pathPattern(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
