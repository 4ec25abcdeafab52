package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimchain/internal/platform/health"
	"claimchain/pkg/platform/middleware/request"
)

// NewRouter assembles the middleware chain, probes, metrics and API routes.
func NewRouter(h *Handler, probes *health.Handler, logger *slog.Logger, reqMetrics *request.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(request.LatencyMiddleware(reqMetrics))

	if probes != nil {
		probes.Register(r)
	}
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	h.Register(r)
	return r
}
