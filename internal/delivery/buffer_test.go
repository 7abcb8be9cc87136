package delivery

import (
	"testing"

	"distributed-kvstore/internal/clock"
)

func TestCanDeliver_SenderClauseRequiresExactSuccessor(t *testing.T) {
	local := clock.Snapshot{"a": 1, "b": 0}

	deliverable := Message{SenderID: "b", SenderClock: clock.Snapshot{"a": 1, "b": 1}}
	if !CanDeliver(local, deliverable) {
		t.Error("expected message to be deliverable: sender's clock is exactly one ahead")
	}

	tooFarAhead := Message{SenderID: "b", SenderClock: clock.Snapshot{"a": 1, "b": 2}}
	if CanDeliver(local, tooFarAhead) {
		t.Error("expected message to be buffered: sender skipped an event")
	}
}

func TestCanDeliver_OtherClauseRequiresNoUnseenDependency(t *testing.T) {
	local := clock.Snapshot{"a": 1, "b": 0, "c": 0}

	msg := Message{SenderID: "b", SenderClock: clock.Snapshot{"a": 2, "b": 1, "c": 0}}
	if CanDeliver(local, msg) {
		t.Error("expected message to be buffered: depends on an 'a' event this node hasn't seen")
	}
}

func TestBuffer_DrainAppliesInDependencyOrder(t *testing.T) {
	b := New()
	// Enqueued out of order: b's 2nd message before its 1st.
	b.Enqueue(Message{Key: "k", Value: "second", SenderID: "b", SenderClock: clock.Snapshot{"a": 0, "b": 2}})
	b.Enqueue(Message{Key: "k", Value: "first", SenderID: "b", SenderClock: clock.Snapshot{"a": 0, "b": 1}})

	local := clock.Snapshot{"a": 0, "b": 0}
	var applied []string

	apply := func(msg Message) bool {
		if !CanDeliver(local, msg) {
			return false
		}
		applied = append(applied, msg.Value)
		local[msg.SenderID] = msg.SenderClock[msg.SenderID]
		return true
	}

	n := b.Drain(apply)
	if n != 2 {
		t.Fatalf("expected both messages drained, got %d", n)
	}
	if len(applied) != 2 || applied[0] != "first" || applied[1] != "second" {
		t.Fatalf("expected causal order [first second], got %v", applied)
	}
	if b.Size() != 0 {
		t.Errorf("expected empty buffer after full drain, got size %d", b.Size())
	}
}

func TestBuffer_DrainLeavesUndeliverableMessagesBuffered(t *testing.T) {
	b := New()
	b.Enqueue(Message{Key: "k", Value: "v", SenderID: "b", SenderClock: clock.Snapshot{"a": 0, "b": 5}})

	local := clock.Snapshot{"a": 0, "b": 0}
	n := b.Drain(func(msg Message) bool { return CanDeliver(local, msg) })

	if n != 0 {
		t.Errorf("expected nothing deliverable, got %d applied", n)
	}
	if b.Size() != 1 {
		t.Errorf("expected message to remain buffered, got size %d", b.Size())
	}
}
