// Package metrics provides Prometheus collectors for remote calls and local reconciliation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for remote calls.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport"
)

// Recorder is the metrics interface used by the api client and the state components.
type Recorder interface {
	ObserveRemote(op, outcome string, elapsed time.Duration)
	RefreshDiscarded(collection string)
	OptimisticMutation(kind string)
}

// Collector records metrics into Prometheus collectors.
type Collector struct {
	remoteRequests   *prometheus.CounterVec
	remoteLatency    *prometheus.HistogramVec
	refreshDiscarded *prometheus.CounterVec
	optimistic       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rolecall_remote_requests_total",
			Help: "Remote API calls by operation and outcome",
		}, []string{"op", "outcome"}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rolecall_remote_request_seconds",
			Help:    "Remote API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		refreshDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rolecall_refresh_discarded_total",
			Help: "Refresh responses discarded because a newer generation was already applied",
		}, []string{"collection"}),
		optimistic: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rolecall_optimistic_mutations_total",
			Help: "Local mutations applied ahead of a refresh",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.remoteRequests,
		c.remoteLatency,
		c.refreshDiscarded,
		c.optimistic,
	)

	return c
}

// ObserveRemote records one remote call.
func (c *Collector) ObserveRemote(op, outcome string, elapsed time.Duration) {
	c.remoteRequests.WithLabelValues(op, outcome).Inc()
	c.remoteLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RefreshDiscarded records a discarded refresh response.
func (c *Collector) RefreshDiscarded(collection string) {
	c.refreshDiscarded.WithLabelValues(collection).Inc()
}

// OptimisticMutation records an optimistic local mutation.
func (c *Collector) OptimisticMutation(kind string) {
	c.optimistic.WithLabelValues(kind).Inc()
}

// Nop discards all metrics.
type Nop struct{}

// ObserveRemote does nothing.
func (Nop) ObserveRemote(string, string, time.Duration) {}

// RefreshDiscarded does nothing.
func (Nop) RefreshDiscarded(string) {}

// OptimisticMutation does nothing.
func (Nop) OptimisticMutation(string) {}
