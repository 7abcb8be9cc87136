// Package clock implements the vector-clock algebra the replication engine
// uses to establish causal order between writes: Increment for local
// events, MergeAndBump for applying a causally-ready inbound event, and
// Compare for the dominance test between two clocks. The delivery buffer's
// deliverability check (internal/delivery.CanDeliver) and the KV store's
// unconditional replace do not call Compare.
package clock
