package clock

import (
	"maps"

	"distributed-kvstore/internal/metrics"
)

// Relation is the result of comparing two vector clocks. Equal and
// concurrent are intentionally conflated into EqualOrConcurrent: nothing in
// the replication engine needs to tell them apart.
type Relation int

const (
	Before Relation = -1
	EqualOrConcurrent Relation = 0
	After Relation = 1
)

// Snapshot is an immutable vector clock value, safe to embed in a
// replication message or a stored entry. A Snapshot taken from a Clock has
// every known node ID as a key; one built from a wire clock may omit
// entries, and Compare and delivery.CanDeliver read a missing entry as zero.
type Snapshot map[string]uint64

// Clock is one node's logical timestamp over the fixed node set the
// cluster was started with. It is not safe for concurrent use on its own;
// callers serialize access the way the engine does (see internal/engine).
type Clock struct {
	self   string
	values map[string]uint64
}

// New creates a clock for self, all-zero across every node in nodeIDs.
// self must be a member of nodeIDs.
func New(nodeIDs []string, self string) *Clock {
	values := make(map[string]uint64, len(nodeIDs))
	for _, id := range nodeIDs {
		values[id] = 0
	}
	return &Clock{self: self, values: values}
}

// Increment advances this node's own entry by one. Call on every local
// write.
func (c *Clock) Increment() {
	c.values[c.self]++
	metrics.ClockIncrements.Inc()
}

// MergeAndBump sets every entry to max(local, other), then advances this
// node's own entry by one. Call when applying an inbound replication.
func (c *Clock) MergeAndBump(other Snapshot) {
	for id, v := range other {
		if v > c.values[id] {
			c.values[id] = v
		}
	}
	c.values[c.self]++
	metrics.ClockMerges.Inc()
}

// Snapshot returns an immutable copy safe to hand to another goroutine or
// marshal onto the wire.
func (c *Clock) Snapshot() Snapshot {
	out := make(Snapshot, len(c.values))
	maps.Copy(out, c.values)
	return out
}

// Self returns this node's own entry from the clock.
func (c *Clock) Self() uint64 {
	return c.values[c.self]
}

// Compare returns Before/After/EqualOrConcurrent for a ≤ b iff ∀i: a[i] ≤
// b[i], and the usual derived rules (see Relation). Missing keys in
// either map are treated as zero so callers may compare raw wire clocks
// without first densifying them.
func Compare(a, b Snapshot) Relation {
	aDominates, bDominates := false, false

	seen := make(map[string]struct{}, len(a)+len(b))
	for id := range a {
		seen[id] = struct{}{}
	}
	for id := range b {
		seen[id] = struct{}{}
	}

	for id := range seen {
		av, bv := a[id], b[id]
		switch {
		case av > bv:
			aDominates = true
		case av < bv:
			bDominates = true
		}
	}

	switch {
	case aDominates && !bDominates:
		return After
	case bDominates && !aDominates:
		return Before
	default:
		metrics.ClockConcurrentObservations.Inc()
		return EqualOrConcurrent
	}
}
