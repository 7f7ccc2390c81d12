package router

import (
	"net/http"

	"fruitstore/internal/handler"
	"fruitstore/internal/metrics"
	"fruitstore/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Fruits    *handler.FruitHandler
	Orders    *handler.OrderHandler
	Payments  *handler.PaymentHandler
	Customers *handler.CustomerHandler
	Users     *handler.UserHandler
	Reports   *handler.ReportHandler
}

// Options configures the router's ambient endpoints.
type Options struct {
	APIKey string
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	// UploadDir is served under /uploads/ when set.
	UploadDir string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> Metrics -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(opts.APIKey, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/fruits", func(r chi.Router) {
			r.Get("/", h.Fruits.Search)
			r.Post("/", h.Fruits.Create)
			r.Get("/stats", h.Fruits.Stats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Fruits.GetByID)
				r.Put("/", h.Fruits.Update)
				r.Delete("/", h.Fruits.Delete)
				r.Get("/stock-history", h.Fruits.StockHistory)
				r.Post("/image", h.Fruits.UploadImage)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.List)
			r.Post("/", h.Orders.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Orders.GetByID)
				r.Patch("/", h.Orders.Update)
				r.Post("/cancel", h.Orders.Cancel)
				r.Get("/payments", h.Payments.ListByOrder)
				r.Post("/payment-proof", h.Payments.AttachProof)
				r.Post("/payment-proof/upload", h.Payments.UploadProof)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.Payments.List)
			r.Post("/", h.Payments.Create)
			r.Get("/summary", h.Payments.Summary)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Payments.GetByID)
				r.Post("/approve", h.Payments.Approve)
				r.Post("/reject", h.Payments.Reject)
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.Customers.Search)
			r.Post("/", h.Customers.Create)
			r.Get("/{id}", h.Customers.GetByID)
			r.Put("/{id}", h.Customers.Update)
			r.Delete("/{id}", h.Customers.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Post("/", h.Users.Create)
			r.Get("/{id}", h.Users.GetByID)
			r.Put("/{id}", h.Users.Update)
			r.Delete("/{id}", h.Users.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", h.Reports.Sales)
			r.Get("/top-fruits", h.Reports.TopFruits)
			r.Get("/payments", h.Reports.Payments)
		})
	})

	return r
}
