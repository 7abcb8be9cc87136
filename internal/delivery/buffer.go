package delivery

import (
	"distributed-kvstore/internal/clock"
	"distributed-kvstore/internal/metrics"
)

// Message is an inbound replication event: the write itself plus the
// clock the sender had installed for it.
type Message struct {
	Key         string
	Value       string
	SenderClock clock.Snapshot
	SenderID    string
}

// CanDeliver implements the two-clause causal-broadcast deliverability
// predicate. local is the receiver's current clock; msg.SenderID is the
// node that produced msg.SenderClock.
//
// A weaker single-clause predicate (∀j: local[j] ≥ msg[j]) is deliberately
// not used here — it cannot distinguish the sender's own next event from a
// stale duplicate of one already applied.
func CanDeliver(local clock.Snapshot, msg Message) bool {
	for node, l := range local {
		m := msg.SenderClock[node]
		if node == msg.SenderID {
			if m != l+1 {
				return false
			}
		} else if m > l {
			return false
		}
	}
	return true
}

// Buffer holds inbound replication messages that were not causally
// deliverable at the time they arrived. Order among buffered messages is
// insertion order; that order only matters for test reproducibility, never
// for correctness.
type Buffer struct {
	messages []Message
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Enqueue appends msg. Callers must have already established that msg is
// not deliverable right now — Buffer does not re-check.
func (b *Buffer) Enqueue(msg Message) {
	b.messages = append(b.messages, msg)
	metrics.DeliveryBufferSize.Set(float64(len(b.messages)))
}

// Size returns the number of messages currently held.
func (b *Buffer) Size() int {
	return len(b.messages)
}

// Drain repeatedly scans the buffer in insertion order, handing each
// message to apply. apply must itself call CanDeliver against the live
// clock and, if deliverable, install the message (clock merge-and-bump
// plus store put) before returning true. A message apply declines (returns
// false) stays in the buffer for the next scan.
//
// Because applying one message can make a later one deliverable, Drain
// re-scans from the front after every scan that applied at least one
// message, stopping only once a full scan applies nothing — this is what
// guarantees a chain of causally-dependent buffered messages all drain in
// one call once their common predecessor lands.
func (b *Buffer) Drain(apply func(Message) bool) int {
	total := 0
	for {
		appliedThisScan := 0
		remaining := b.messages[:0]
		for _, m := range b.messages {
			if apply(m) {
				appliedThisScan++
				total++
			} else {
				remaining = append(remaining, m)
			}
		}
		b.messages = remaining
		if appliedThisScan == 0 {
			break
		}
	}
	metrics.DeliveryBufferSize.Set(float64(len(b.messages)))
	if total > 0 {
		metrics.DeliveryBufferDrained.Add(float64(total))
	}
	return total
}
