package metrics

import "github.com/prometheus/client_golang/prometheus"

// Assignment outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewAssignmentOperationsTotal returns a counter of assign/complete attempts by outcome.
func NewAssignmentOperationsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_operations_total",
		Help: "Total number of order assign/complete operations by outcome",
	}, []string{"operation", "outcome"})
}

// Broadcast groups the live broadcast hub instruments.
type Broadcast struct {
	Observers prometheus.Gauge
	Couriers  prometheus.Gauge
	Snapshots prometheus.Counter
	Dropped   prometheus.Counter
}

// NewBroadcast creates unregistered broadcast instruments.
func NewBroadcast() *Broadcast {
	return &Broadcast{
		Observers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broadcast_observers",
			Help: "Number of connected observer streams",
		}),
		Couriers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broadcast_couriers",
			Help: "Number of connected courier streams",
		}),
		Snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broadcast_snapshots_total",
			Help: "Total number of position snapshots fanned out",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broadcast_dropped_total",
			Help: "Total number of stale snapshots dropped from slow observer queues",
		}),
	}
}

// Collectors returns every instrument for registration.
func (b *Broadcast) Collectors() []prometheus.Collector {
	return []prometheus.Collector{b.Observers, b.Couriers, b.Snapshots, b.Dropped}
}
