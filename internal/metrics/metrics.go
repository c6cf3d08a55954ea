// Package metrics exposes the Prometheus collectors of the ledger services.
// Each Collector owns a private registry; the methods are safe on a nil
// receiver so that components can run without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"finledger/internal/cache"
	"finledger/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for month updates.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	MonthUpdates     *prometheus.CounterVec
	ChangeRecords    *prometheus.CounterVec
	PublishFailures  prometheus.Counter
	ExportedRows     prometheus.Counter
	ExportFailures   prometheus.Counter
	StatementsClosed prometheus.Counter
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		MonthUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "month_updates_total",
				Help:      "Month update attempts by result",
			},
			[]string{"result"},
		),
		ChangeRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "change_records_total",
				Help:      "Change records produced by reconciliation",
			},
			[]string{"category", "kind"},
		),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Month update notifications that could not be published",
		}),
		ExportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_rows_total",
			Help:      "History rows appended to the spreadsheet",
		}),
		ExportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Archive entries that failed to export",
		}),
		StatementsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_closed_total",
			Help:      "Card statements archived by the statement worker",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.MonthUpdates,
		c.ChangeRecords,
		c.PublishFailures,
		c.ExportedRows,
		c.ExportFailures,
		c.StatementsClosed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the private registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RegisterCacheStats exports the hit, miss and size counters of a cache.
func (c *Collector) RegisterCacheStats(name string, stats func() cache.Stats) {
	if c == nil {
		return
	}
	labels := prometheus.Labels{"cache": name}
	c.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "cache_hits_total",
			Help:        "Cache lookups served from memory",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "cache_misses_total",
			Help:        "Cache lookups that fell through",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "cache_entries",
			Help:        "Entries currently cached",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Size) }),
	)
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveMonthUpdate(result string) {
	if c == nil {
		return
	}
	c.MonthUpdates.WithLabelValues(result).Inc()
}

// ObserveDelta counts the records of a reconciliation by category and kind.
func (c *Collector) ObserveDelta(d core.Delta) {
	if c == nil {
		return
	}
	for cat, records := range d {
		for _, r := range records {
			c.ChangeRecords.WithLabelValues(string(cat), string(r.Kind)).Inc()
		}
	}
}

func (c *Collector) IncPublishFailures() {
	if c == nil {
		return
	}
	c.PublishFailures.Inc()
}

func (c *Collector) AddExportedRows(n int) {
	if c == nil {
		return
	}
	c.ExportedRows.Add(float64(n))
}

func (c *Collector) IncExportFailures() {
	if c == nil {
		return
	}
	c.ExportFailures.Inc()
}

func (c *Collector) IncStatementsClosed() {
	if c == nil {
		return
	}
	c.StatementsClosed.Inc()
}
