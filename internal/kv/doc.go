// Package kv is the in-memory key-value mapping the replication engine
// installs values into. A key's prior (value, stamp) pair is replaced
// unconditionally on every Put — no version chains, no merge of concurrent
// values. Mutation ordering (and therefore which concurrent write wins) is
// decided by the engine's lock, not by this package.
package kv
