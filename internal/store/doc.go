// Package store provides the SQLite-backed caches around translation.
//
// Two tables:
//   - records: record documents keyed by identifier (the RecordCache)
//   - compiled_queries: rendered query text keyed by canon.QueryKey
//
// Both are write-once per key from the caller's point of view: PutRecord
// replaces a record, PutCompiled keeps the first text stored for a key,
// which is safe because translation is deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - user_version: schema migrations
package store
