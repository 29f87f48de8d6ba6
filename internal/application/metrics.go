package application

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

const metricsNamespace = "itemsync"

// Collector is a prometheus.Collector with the relay and sync counters.
type Collector struct {
	notifications    *prometheus.CounterVec
	dropped          prometheus.Counter
	remoteFailures   *prometheus.CounterVec
	cacheFailures    prometheus.Counter
	cacheRefreshes   prometheus.Counter
	dispatchDuration prometheus.Histogram
}

func NewMetricsCollector() *Collector {
	return &Collector{
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_total",
				Help:      "Change notifications dispatched by the relay.",
			}, []string{"operation"},
		),
		dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_dropped_total",
				Help:      "Malformed change notifications dropped by the relay.",
			},
		),
		remoteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "remote_sync_failures_total",
				Help:      "Remote mirror calls that failed.",
			}, []string{"operation"},
		),
		cacheFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_refresh_failures_total",
				Help:      "Cache refreshes that could not be written.",
			},
		),
		cacheRefreshes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_refreshes_total",
				Help:      "Cache snapshots written.",
			},
		),
		dispatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time taken to dispatch one change notification.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.notifications.Describe(ch)
	c.dropped.Describe(ch)
	c.remoteFailures.Describe(ch)
	c.cacheFailures.Describe(ch)
	c.cacheRefreshes.Describe(ch)
	c.dispatchDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.notifications.Collect(ch)
	c.dropped.Collect(ch)
	c.remoteFailures.Collect(ch)
	c.cacheFailures.Collect(ch)
	c.cacheRefreshes.Collect(ch)
	c.dispatchDuration.Collect(ch)
}

func (c *Collector) notificationDispatched(op domain.Operation, took time.Duration) {
	c.notifications.WithLabelValues(string(op)).Inc()
	c.dispatchDuration.Observe(took.Seconds())
}

func (c *Collector) notificationDropped() { c.dropped.Inc() }

func (c *Collector) remoteFailed(op string) { c.remoteFailures.WithLabelValues(op).Inc() }

func (c *Collector) cacheRefreshed(err error) {
	if err != nil {
		c.cacheFailures.Inc()
		return
	}
	c.cacheRefreshes.Inc()
}
