// Package metrics holds the Prometheus collectors shared across the
// replication engine. Every counter here is incremented inline by the
// component that owns the event; nothing in this package touches engine
// state or locking.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClockIncrements counts local Increment() calls, one per local write.
	// Applied inbound replications are counted by ClockMerges instead.
	ClockIncrements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kv_vector_clock_increments_total",
		Help: "Total number of vector clock self-increments.",
	})

	// ClockMerges counts MergeAndBump() calls performed while applying an
	// inbound replication message.
	ClockMerges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kv_vector_clock_merges_total",
		Help: "Total number of vector clock merge-and-bump operations.",
	})

	// ClockConcurrentObservations counts Compare() calls where neither
	// clock dominates the other (the conflated equal-or-concurrent case).
	ClockConcurrentObservations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kv_vector_clock_concurrent_observations_total",
		Help: "Total number of clock comparisons where neither side dominates.",
	})

	// DeliveryBufferSize tracks the current number of buffered,
	// not-yet-deliverable replication messages.
	DeliveryBufferSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kv_delivery_buffer_size",
		Help: "Current number of messages held in the causal delivery buffer.",
	})

	// DeliveryBufferDrained counts messages that left the buffer because
	// they became deliverable.
	DeliveryBufferDrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kv_delivery_buffer_drained_total",
		Help: "Total number of buffered messages applied out of the delivery buffer.",
	})

	// ReplicationFanout counts outbound replication sends, labeled by
	// outcome so peer failures are visible without scraping logs.
	ReplicationFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kv_replication_fanout_total",
		Help: "Total number of outbound replication sends, by outcome.",
	}, []string{"outcome"})
)
