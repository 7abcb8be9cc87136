// Package transport implements the peer transport: best-effort, per-peer
// independent HTTP delivery of replication messages. A slow or failed peer
// never blocks another, and a failed send is logged and dropped — there is
// no retry queue or dead-letter at this layer.
package transport
