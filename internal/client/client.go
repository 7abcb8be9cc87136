// Package client provides a Go SDK for talking to one node of the
// distributed KV store. It hides HTTP and JSON details behind Put/Get/
// Status/Health; it implements no distributed logic of its own — that all
// lives on the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to exactly one node. That node is responsible for
// coordinating replication to the rest of the cluster; the client never
// does so itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. baseURL looks like "http://localhost:8080". A
// zero timeout defaults to 10s — never call the network without one.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PutResponse is returned after a successful write.
type PutResponse struct {
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	VectorClock map[string]uint64 `json:"vector_clock"`
	NodeID      string            `json:"node_id"`
}

// GetResponse is the value plus the clock it was stamped with.
type GetResponse struct {
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	VectorClock map[string]uint64 `json:"vector_clock"`
	NodeID      string            `json:"node_id"`
}

// StatusResponse mirrors GET /status.
type StatusResponse struct {
	NodeID      string                    `json:"node_id"`
	VectorClock map[string]uint64         `json:"vector_clock"`
	KVStore     map[string]map[string]any `json:"kv_store"`
	BufferSize  int                       `json:"buffer_size"`
}

// HealthResponse mirrors GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	NodeID      string            `json:"node_id"`
	VectorClock map[string]uint64 `json:"vector_clock"`
	KVStoreSize int               `json:"kv_store_size"`
}

// Put stores key=value on the node this client talks to.
func (c *Client) Put(ctx context.Context, key, value string) (*PutResponse, error) {
	body, _ := json.Marshal(map[string]string{"key": key, "value": value})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/put", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("put request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result PutResponse
	return &result, json.NewDecoder(resp.Body).Decode(&result)
}

// Get retrieves the value for key. A missing key becomes ErrNotFound.
func (c *Client) Get(ctx context.Context, key string) (*GetResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/get/%s", c.baseURL, key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result GetResponse
	return &result, json.NewDecoder(resp.Body).Decode(&result)
}

// Status fetches the node's full observability snapshot.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var result StatusResponse
	return &result, json.NewDecoder(resp.Body).Decode(&result)
}

// Health fetches the node's liveness summary.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var result HealthResponse
	return &result, json.NewDecoder(resp.Body).Decode(&result)
}

// ─── Errors ───────────────────────────────────────────────────────────────────

// ErrNotFound is returned when a key does not exist on the node.
var ErrNotFound = fmt.Errorf("key not found")

// APIError carries the HTTP status and the error message from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// checkStatus converts non-2xx HTTP responses into a Go error.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = string(body)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
