// Package metrics exposes Prometheus metrics for offer progress, bet
// settlement, event processing and the HTTP API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"matchbet-server/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchbet"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ProgressCommands *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	SettledBets      *prometheus.CounterVec
	SettledProfit    *prometheus.GaugeVec
	EventsProcessed  *prometheus.CounterVec
	EventDuration    *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ProgressCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "progress_commands_total",
				Help:      "Offer progress commands by command and result",
			},
			[]string{"command", "result"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "progress_command_duration_seconds",
				Help:      "Latency of offer progress commands",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"command"},
		),
		SettledBets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settled_bets_total",
				Help:      "Bets settled by bet type",
			},
			[]string{"bet_type"},
		),
		// Qualifying settlements are usually negative.
		SettledProfit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "settled_profit",
				Help:      "Running sum of settled profit by bet type",
			},
			[]string{"bet_type"},
		),
		EventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_processed_total",
				Help:      "Progress events handled by background processors",
			},
			[]string{"type", "result"},
		),
		EventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_duration_seconds",
				Help:      "Time background processors spend on one progress event",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"type"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ProgressCommands,
		m.CommandDuration,
		m.SettledBets,
		m.SettledProfit,
		m.EventsProcessed,
		m.EventDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry returns the prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCommand records one state machine command.
func (m *Metrics) ObserveCommand(command, result string, elapsed time.Duration) {
	m.ProgressCommands.WithLabelValues(command, result).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// AddSettledProfit records a settled bet and its profit.
func (m *Metrics) AddSettledProfit(betType string, profit float64) {
	m.SettledBets.WithLabelValues(betType).Inc()
	m.SettledProfit.WithLabelValues(betType).Add(profit)
}

// ObserveEvent is a workers.ResultCallback.
func (m *Metrics) ObserveEvent(result workers.ProcessingResult) {
	status := "ok"
	if result.Error != nil {
		status = "error"
	}
	m.EventsProcessed.WithLabelValues(result.Event.Type, status).Inc()
	m.EventDuration.WithLabelValues(result.Event.Type).Observe(result.Duration.Seconds())
}

// Instrument wraps an event processor so each event it handles is counted.
func (m *Metrics) Instrument(p workers.EventProcessor) workers.EventProcessor {
	return instrumented{EventProcessor: p, metrics: m}
}

type instrumented struct {
	workers.EventProcessor
	metrics *Metrics
}

func (i instrumented) Process(ctx context.Context, event workers.EventMessage) error {
	start := time.Now()
	err := i.EventProcessor.Process(ctx, event)
	i.metrics.ObserveEvent(workers.ProcessingResult{Event: event, Duration: time.Since(start), Error: err})
	return err
}

// GinMiddleware counts requests labelled by route template, not raw path.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
