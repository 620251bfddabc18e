package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/dossiers/core/document"
)

// metrics are registered on a registry of their own, one per Server.
type metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	transitionsTotal    *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dossiers_http_requests_total",
				Help: "Number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dossiers_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		transitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dossiers_document_transitions_total",
				Help: "Number of document transitions by action, type and outcome",
			},
			[]string{"action", "type", "outcome"},
		),
	}
}

// middleware records every request under its route template (/v1/students/:id, ...).
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}

		path := ctx.Path()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Response().Status)
		m.httpRequestsTotal.WithLabelValues(ctx.Request().Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(ctx.Request().Method, path).Observe(time.Since(start).Seconds())
		return nil
	}
}

func (m *metrics) observeTransition(action document.Action, t document.Type, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.transitionsTotal.WithLabelValues(string(action), string(t), outcome).Inc()
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
