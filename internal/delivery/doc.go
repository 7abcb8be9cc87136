// Package delivery implements the causal delivery buffer: the two-clause
// deliverability predicate and the insertion-ordered holding area for inbound
// replication messages that fail it. It has no lock of its own — like
// internal/kv, all access is serialized by the replication engine's lock
// (internal/engine), never by this package.
package delivery
