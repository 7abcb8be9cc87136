package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"distributed-kvstore/internal/clock"
	"distributed-kvstore/internal/delivery"
	"distributed-kvstore/internal/metrics"

	"github.com/sirupsen/logrus"
)

// sendTimeout bounds a single peer send.
const sendTimeout = 5 * time.Second

// Peer is one node in the fixed cluster; a peer list may include self.
type Peer struct {
	ID      string
	Address string // host:port
}

// ReplicateRequest is the wire format POSTed to a peer's /replicate
// endpoint. internal/api binds the same shape on the receiving side.
type ReplicateRequest struct {
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	VectorClock map[string]uint64 `json:"vector_clock"`
	SenderID    string            `json:"sender_id"`
}

// HTTP fans a replication message out to every configured peer over HTTP,
// excluding self by identity rather than by a host:port string comparison.
type HTTP struct {
	selfID string
	peers  []Peer
	client *http.Client
	log    *logrus.Entry
}

// New creates an HTTP transport. peers may include this node's own entry;
// it is filtered out by ID, not by address.
func New(selfID string, peers []Peer, log *logrus.Logger) *HTTP {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTP{
		selfID: selfID,
		peers:  peers,
		client: &http.Client{Timeout: sendTimeout},
		log:    log.WithField("node_id", selfID),
	}
}

// Broadcast dispatches msg to every peer concurrently and returns
// immediately; each send is an independent unit of work with its own
// timeout, so one slow or unreachable peer never delays the others or the
// caller.
func (h *HTTP) Broadcast(msg delivery.Message) {
	for _, peer := range h.peers {
		if peer.ID == h.selfID {
			continue
		}
		go h.send(peer, msg)
	}
}

func (h *HTTP) send(peer Peer, msg delivery.Message) {
	body := ReplicateRequest{
		Key:         msg.Key,
		Value:       msg.Value,
		VectorClock: msg.SenderClock,
		SenderID:    msg.SenderID,
	}

	data, err := json.Marshal(body)
	if err != nil {
		h.log.WithError(err).Error("marshal replication message")
		metrics.ReplicationFanout.WithLabelValues("error").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s/replicate", peer.Address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		h.log.WithError(err).WithField("peer_id", peer.ID).Error("build replicate request")
		metrics.ReplicationFanout.WithLabelValues("error").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"peer_id":      peer.ID,
			"peer_address": peer.Address,
			"error":        err,
		}).Warn("replication send failed, dropping")
		metrics.ReplicationFanout.WithLabelValues("error").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		h.log.WithFields(logrus.Fields{
			"peer_id": peer.ID,
			"status":  resp.StatusCode,
		}).Warn("replication send rejected, dropping")
		metrics.ReplicationFanout.WithLabelValues("error").Inc()
		return
	}

	metrics.ReplicationFanout.WithLabelValues("ok").Inc()
}

// SnapshotFromWire converts a raw wire clock (plain JSON map) into a
// clock.Snapshot. Exported so internal/api can reuse it when parsing an
// inbound /replicate body, since both sides share this wire shape.
func SnapshotFromWire(raw map[string]uint64) clock.Snapshot {
	out := make(clock.Snapshot, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}
