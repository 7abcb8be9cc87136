// Package api is the HTTP request surface: it translates the wire
// endpoints into calls on the replication engine and back into JSON
// responses. It holds no state of its own and performs no causal-delivery
// logic — that all lives in internal/engine.
package api
