// Package engine implements the replication engine: it owns the vector
// clock, the KV store, and the delivery buffer, and
// serializes every mutation to them behind one lock. Local writes stamp
// and fan out; inbound replications either apply immediately or buffer
// until their causal predecessors have landed. A background goroutine
// drains the buffer whenever the clock advances, with a bounded periodic
// tick as a safety net against a missed wake.
package engine
