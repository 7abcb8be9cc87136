package engine

import (
	"testing"
	"time"

	"distributed-kvstore/internal/delivery"

	"go.uber.org/goleak"
)

// noopTransport discards every broadcast; used where a test only exercises
// local behavior.
type noopTransport struct{}

func (noopTransport) Broadcast(delivery.Message) {}

// recordingTransport captures broadcasts so a test can hand them to other
// engines to simulate replication without a network.
type recordingTransport struct {
	sent chan delivery.Message
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{sent: make(chan delivery.Message, 64)}
}

func (r *recordingTransport) Broadcast(msg delivery.Message) {
	r.sent <- msg
}

func newTestEngine(t *testing.T, nodeIDs []string, self string) (*Engine, *recordingTransport) {
	t.Helper()
	tr := newRecordingTransport()
	e := New(nodeIDs, self, tr, nil)
	t.Cleanup(e.Stop)
	return e, tr
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPut_InstallsLocallyAndBroadcasts(t *testing.T) {
	e, tr := newTestEngine(t, []string{"a", "b"}, "a")

	stamp := e.Put("k", "v")
	if stamp["a"] != 1 {
		t.Errorf("expected self clock 1 after first write, got %d", stamp["a"])
	}

	entry, ok := e.Get("k")
	if !ok || entry.Value != "v" {
		t.Fatalf("expected locally readable write, got %+v ok=%v", entry, ok)
	}

	select {
	case msg := <-tr.sent:
		if msg.Key != "k" || msg.Value != "v" {
			t.Errorf("unexpected broadcast message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast after Put")
	}
}

func TestGet_MissingKey(t *testing.T) {
	e, _ := newTestEngine(t, []string{"a"}, "a")
	if _, ok := e.Get("missing"); ok {
		t.Error("expected ok=false for a key never written")
	}
}

func TestReceive_DiscardsSelfAddressedMessage(t *testing.T) {
	e, _ := newTestEngine(t, []string{"a", "b"}, "a")
	e.Receive("k", "v", e.Health().Clock, "a")

	if _, ok := e.Get("k"); ok {
		t.Error("a message addressed from this node's own id must never be applied")
	}
}

func TestReceive_BuffersOutOfOrderThenDrainsOnPredecessorArrival(t *testing.T) {
	e, _ := newTestEngine(t, []string{"a", "b"}, "a")

	// b's second write arrives before its first.
	e.Receive("k", "second", map[string]uint64{"a": 0, "b": 2}, "b")
	if st := e.Status(); st.BufferSize != 1 {
		t.Fatalf("expected the out-of-order message to be buffered, got size %d", st.BufferSize)
	}
	if _, ok := e.Get("k"); ok {
		t.Error("undeliverable message must not be applied yet")
	}

	e.Receive("k", "first", map[string]uint64{"a": 0, "b": 1}, "b")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := e.Status(); st.BufferSize == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	entry, ok := e.Get("k")
	if !ok || entry.Value != "second" {
		t.Fatalf("expected the chain to drain to 'second', got %+v ok=%v", entry, ok)
	}
	if e.Status().BufferSize != 0 {
		t.Error("expected buffer to be empty once the chain is fully delivered")
	}
}

func TestTwoEngines_ReplicateThroughFakeTransport(t *testing.T) {
	trA := newRecordingTransport()
	trB := newRecordingTransport()

	a := New([]string{"a", "b"}, "a", trA, nil)
	b := New([]string{"a", "b"}, "b", trB, nil)
	t.Cleanup(a.Stop)
	t.Cleanup(b.Stop)

	a.Put("k", "from-a")

	select {
	case msg := <-trA.sent:
		b.Receive(msg.Key, msg.Value, msg.SenderClock, msg.SenderID)
	case <-time.After(time.Second):
		t.Fatal("expected node a to broadcast its write")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if entry, ok := b.Get("k"); ok && entry.Value == "from-a" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected node b to observe node a's replicated write")
}
