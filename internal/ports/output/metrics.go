// Package output defines the secondary/driven ports of the application.
package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncLookup counts an identity lookup (constellation, sv, sbas) and whether it resolved.
	IncLookup(kind string, found bool)

	// IncSelection counts a selector call by resulting constellation ("none" on no match).
	IncSelection(constellation string)

	// ObserveSelectionDuration records selector latency.
	ObserveSelectionDuration(duration time.Duration)

	// SetDatabaseEntries records the size of the loaded database.
	SetDatabaseEntries(total, withCoverage int)

	// IncDatabaseLoads counts database load attempts per source.
	IncDatabaseLoads(source string, success bool)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncLookup implements MetricsCollector.
func (n *NoOpMetrics) IncLookup(_ string, _ bool) {}

// IncSelection implements MetricsCollector.
func (n *NoOpMetrics) IncSelection(_ string) {}

// ObserveSelectionDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveSelectionDuration(_ time.Duration) {}

// SetDatabaseEntries implements MetricsCollector.
func (n *NoOpMetrics) SetDatabaseEntries(_, _ int) {}

// IncDatabaseLoads implements MetricsCollector.
func (n *NoOpMetrics) IncDatabaseLoads(_ string, _ bool) {}
