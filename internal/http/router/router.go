package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"parcel-delivery/internal/http/handlers"
	obs "parcel-delivery/internal/http/middleware"
	"parcel-delivery/internal/logx"
)

// Deps groups everything the router mounts.
type Deps struct {
	Logger       logx.Logger
	Base         *handlers.Handlers
	Deliveries   *handlers.DeliveryHandler
	Deliverymen  *handlers.DeliverymanHandler
	Recipients   *handlers.RecipientHandler
	Metrics      obs.HTTPMetrics
	MetricsRoute http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(d.Logger, d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	if d.MetricsRoute != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsRoute)
	}

	r.Route("/deliverymen/{deliveryman_id}", func(r chi.Router) {
		r.Get("/deliveries", d.Deliveries.ListForDeliveryman)
		r.Put("/retrieve/{delivery_id}", d.Deliveries.Retrieve)
		r.Put("/deliver/{delivery_id}", d.Deliveries.Deliver)
	})

	r.Route("/deliveries/{delivery_id}/problems", func(r chi.Router) {
		r.Get("/", d.Deliveries.ListProblems)
		r.Post("/", d.Deliveries.ReportProblem)
	})

	r.Route("/manage", func(r chi.Router) {
		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", d.Deliveries.List)
			r.Post("/", d.Deliveries.Create)
			r.Get("/{delivery_id}", d.Deliveries.Get)
			r.Put("/{delivery_id}", d.Deliveries.Update)
			r.Delete("/{delivery_id}", d.Deliveries.Delete)
		})
		r.Delete("/problems/{problem_id}/cancel-delivery", d.Deliveries.CancelByProblem)

		r.Route("/deliverymen", func(r chi.Router) {
			r.Get("/", d.Deliverymen.List)
			r.Post("/", d.Deliverymen.Create)
			r.Get("/{id}", d.Deliverymen.GetByID)
			r.Put("/{id}", d.Deliverymen.Update)
			r.Delete("/{id}", d.Deliverymen.Delete)
		})

		r.Route("/recipients", func(r chi.Router) {
			r.Get("/", d.Recipients.List)
			r.Post("/", d.Recipients.Create)
			r.Get("/{id}", d.Recipients.GetByID)
			r.Put("/{id}", d.Recipients.Update)
			r.Delete("/{id}", d.Recipients.Delete)
		})
	})

	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	return r
}
