package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"courier-dispatch/internal/metrics"
)

var metricsRegisterer prometheus.Registerer = prometheus.DefaultRegisterer

// metricSet carries the domain instruments shared by services.
type metricSet struct {
	AssignmentOps *prometheus.CounterVec
	Broadcast     *metrics.Broadcast
}

type metricsOut struct {
	dig.Out
	RateLimitExceeded prometheus.Counter `name:"rate_limit_exceeded_total"`
	Set               *metricSet
}

// provideMetrics registers every instrument. A collector that is already
// registered (a second container in the same process) is reused.
func provideMetrics() (metricsOut, error) {
	rl, err := register(metrics.NewRateLimitExceededTotal(), "rate_limit_exceeded_total")
	if err != nil {
		return metricsOut{}, err
	}
	ops, err := register(metrics.NewAssignmentOperationsTotal(), "assignment_operations_total")
	if err != nil {
		return metricsOut{}, err
	}

	b := metrics.NewBroadcast()
	if b.Observers, err = register(b.Observers, "broadcast_observers"); err != nil {
		return metricsOut{}, err
	}
	if b.Couriers, err = register(b.Couriers, "broadcast_couriers"); err != nil {
		return metricsOut{}, err
	}
	if b.Snapshots, err = register(b.Snapshots, "broadcast_snapshots_total"); err != nil {
		return metricsOut{}, err
	}
	if b.Dropped, err = register(b.Dropped, "broadcast_dropped_total"); err != nil {
		return metricsOut{}, err
	}

	return metricsOut{
		RateLimitExceeded: rl,
		Set:               &metricSet{AssignmentOps: ops, Broadcast: b},
	}, nil
}

func register[C prometheus.Collector](c C, name string) (C, error) {
	err := metricsRegisterer.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, fmt.Errorf("register %s: %w", name, err)
}
