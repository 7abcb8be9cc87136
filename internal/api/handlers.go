// Package api wires up the Gin HTTP router with all handler functions.
package api

import (
	"net/http"

	"distributed-kvstore/internal/engine"
	"distributed-kvstore/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler holds the engine dependency injected from main.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a Handler.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Register mounts the health, get, put, replicate, and status endpoints,
// plus /metrics for Prometheus scraping — an ambient concern, not part of
// the replicated wire protocol itself.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/get/:key", h.Get)
	r.POST("/put", h.Put)
	r.POST("/replicate", h.Replicate)
	r.GET("/status", h.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	health := h.engine.Health()
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"node_id":       health.NodeID,
		"vector_clock":  health.Clock,
		"kv_store_size": health.KVStoreSize,
	})
}

// Get handles GET /get/:key.
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")

	entry, ok := h.engine.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":          key,
		"value":        entry.Value,
		"vector_clock": entry.Stamp,
		"node_id":      h.engine.Health().NodeID,
	})
}

// Put handles POST /put. Body: {"key": "...", "value": "..."}.
func (h *Handler) Put(c *gin.Context) {
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Key == "" || body.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key and value are required"})
		return
	}

	stamp := h.engine.Put(body.Key, body.Value)
	c.JSON(http.StatusOK, gin.H{
		"key":          body.Key,
		"value":        body.Value,
		"vector_clock": stamp,
		"node_id":      h.engine.Health().NodeID,
	})
}

// Replicate handles POST /replicate. Body:
// {"key","value","vector_clock","sender_id"}.
func (h *Handler) Replicate(c *gin.Context) {
	var body transport.ReplicateRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Key == "" || body.SenderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed replication message"})
		return
	}

	h.engine.Receive(body.Key, body.Value, transport.SnapshotFromWire(body.VectorClock), body.SenderID)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// Status handles GET /status.
func (h *Handler) Status(c *gin.Context) {
	status := h.engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"node_id":      status.NodeID,
		"vector_clock": status.Clock,
		"kv_store":     status.Store,
		"buffer_size":  status.BufferSize,
	})
}
