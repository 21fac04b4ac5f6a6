package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/behancebrothers-ops/jjfg-sub000/pkg/health"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/middleware"
)

// ServiceName labels HTTP metrics and spans.
const ServiceName = "settlement"

// NewRouter creates a chi router with all settlement routes registered.
func NewRouter(
	settler Settler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RealIP)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewSettlementHandler(settler, logger)

	r.Route("/api/v1/settlements", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/direct", h.SettleDirect)
		r.Post("/gateway/sessions", h.BeginGatewaySettlement)
		r.Post("/gateway/confirm", h.ConfirmGatewaySettlement)
		r.Get("/gateway/sessions/{sessionId}/order", h.GetOrderBySession)
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/{id}", h.GetOrder)
	})

	return r
}
