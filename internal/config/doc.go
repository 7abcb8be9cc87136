// Package config parses a node's startup configuration: its identifier,
// listen address, and peer list. It builds the fixed node-ID set and peer
// list that internal/engine and internal/transport are constructed with.
package config
