package engine

import (
	"sync"
	"time"

	"distributed-kvstore/internal/clock"
	"distributed-kvstore/internal/delivery"
	"distributed-kvstore/internal/kv"

	"github.com/sirupsen/logrus"
)

// safetyNetInterval bounds how long a missed wake signal can stall the
// buffer drainer.
const safetyNetInterval = 100 * time.Millisecond

// Transport sends one replication message to every other peer. It is
// best-effort and must never block the caller for longer than its own
// internal per-send timeout; Engine never waits on it under its lock.
type Transport interface {
	Broadcast(msg delivery.Message)
}

// Status is a point-in-time copy of engine state, safe to serialize onto
// the wire.
type Status struct {
	NodeID     string
	Clock      clock.Snapshot
	Store      map[string]kv.Entry
	BufferSize int
}

// Health is the smaller point-in-time copy served from /health.
type Health struct {
	NodeID      string
	Clock       clock.Snapshot
	KVStoreSize int
}

// Engine is the replicated KV store's single coordination point: the
// vector clock, KV store, and delivery buffer are one conceptual resource
// protected by mu. mu is held only for local work — clock arithmetic, map
// update, buffer scan — never across network I/O.
type Engine struct {
	mu     sync.Mutex
	cond   *sync.Cond
	selfID string

	clock     *clock.Clock
	store     *kv.Store
	buffer    *delivery.Buffer
	transport Transport

	log *logrus.Entry

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates an Engine for selfID over the fixed node set nodeIDs, and
// starts its background buffer-draining worker. Callers must eventually
// call Stop.
func New(nodeIDs []string, selfID string, transport Transport, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Engine{
		selfID:    selfID,
		clock:     clock.New(nodeIDs, selfID),
		store:     kv.New(),
		buffer:    delivery.New(),
		transport: transport,
		log:       log.WithField("node_id", selfID),
		stopCh:    make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)

	e.wg.Add(2)
	go e.driveBuffer()
	go e.safetyNetTicker()
	return e
}

// Stop halts the background workers and waits for them to exit.
func (e *Engine) Stop() {
	close(e.stopCh)
	e.mu.Lock()
	e.cond.Broadcast()
	e.mu.Unlock()
	e.wg.Wait()
}

// Put performs a local write: increment, install, release, then dispatch
// to every peer in the background. It returns the post-write clock
// snapshot — success here means "installed locally and dispatched," never
// "acknowledged by peers."
func (e *Engine) Put(key, value string) clock.Snapshot {
	e.mu.Lock()
	e.clock.Increment()
	stamp := e.clock.Snapshot()
	e.store.Put(key, value, stamp)
	e.log.WithFields(logrus.Fields{"key": key, "clock": stamp}).Info("local write")
	e.cond.Broadcast()
	e.mu.Unlock()

	e.transport.Broadcast(delivery.Message{
		Key:         key,
		Value:       value,
		SenderClock: stamp,
		SenderID:    e.selfID,
	})

	return stamp
}

// Get returns the current value for key, or ok=false if it has never been
// installed on this node.
func (e *Engine) Get(key string) (kv.Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(key)
}

// Receive handles an inbound replication message: a self-addressed
// message is discarded; a deliverable one is applied immediately and may
// unblock a chain of buffered successors; anything else waits in the
// buffer.
func (e *Engine) Receive(key, value string, senderClock clock.Snapshot, senderID string) {
	if senderID == e.selfID {
		e.log.WithField("key", key).Debug("discarded self-addressed replication")
		return
	}

	msg := delivery.Message{Key: key, Value: value, SenderClock: senderClock, SenderID: senderID}

	e.mu.Lock()
	defer e.mu.Unlock()

	if delivery.CanDeliver(e.clock.Snapshot(), msg) {
		e.applyLocked(msg)
		e.drainLocked()
		return
	}

	e.buffer.Enqueue(msg)
	e.log.WithFields(logrus.Fields{"key": key, "sender_id": senderID}).Info("buffered undeliverable replication")
	e.cond.Broadcast()
}

// Status takes a consistent snapshot of clock, store, and buffer size
// under the engine lock.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		NodeID:     e.selfID,
		Clock:      e.clock.Snapshot(),
		Store:      e.store.Snapshot(),
		BufferSize: e.buffer.Size(),
	}
}

// Health takes a smaller snapshot for the liveness endpoint.
func (e *Engine) Health() Health {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Health{
		NodeID:      e.selfID,
		Clock:       e.clock.Snapshot(),
		KVStoreSize: e.store.Len(),
	}
}

// applyLocked installs a deliverable message: merge-and-bump the clock,
// then put. Caller must hold mu and must have already confirmed
// deliverability.
func (e *Engine) applyLocked(msg delivery.Message) {
	e.clock.MergeAndBump(msg.SenderClock)
	stamp := e.clock.Snapshot()
	e.store.Put(msg.Key, msg.Value, stamp)
	e.log.WithFields(logrus.Fields{
		"key":       msg.Key,
		"sender_id": msg.SenderID,
		"clock":     stamp,
	}).Info("applied replicated write")
	e.cond.Broadcast()
}

// drainLocked drains the buffer to a fixed point. Caller must hold mu.
func (e *Engine) drainLocked() {
	e.buffer.Drain(func(msg delivery.Message) bool {
		if !delivery.CanDeliver(e.clock.Snapshot(), msg) {
			return false
		}
		e.applyLocked(msg)
		return true
	})
}

// driveBuffer is the dedicated background worker: it drains to a fixed
// point, then waits for a wake signal (enqueue, clock advance, or the
// safety-net tick) before draining again.
func (e *Engine) driveBuffer() {
	defer e.wg.Done()
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		select {
		case <-e.stopCh:
			return
		default:
		}
		e.drainLocked()
		e.cond.Wait()
	}
}

// safetyNetTicker guards against a missed wake signal by periodically
// broadcasting on the condition variable, forcing driveBuffer to re-scan.
func (e *Engine) safetyNetTicker() {
	defer e.wg.Done()
	t := time.NewTicker(safetyNetInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			e.mu.Lock()
			e.cond.Broadcast()
			e.mu.Unlock()
		case <-e.stopCh:
			return
		}
	}
}
