// Package store is the SQLite event journal of the sync engine.
//
// A journal holds runs. Each run is the ordered list of events one engine
// applied, with the state digest after every event and whether the event
// changed the tree. Every N events a checkpoint stores the full state
// snapshot in deterministic CBOR.
//
// The engine never reads the journal back; it exists so that operators can
// trace what a tab went through and verify with ReplayRun that re-applying
// the same events reproduces the same digests.
//
// # Conventions
//
//   - Ordering uses the logical seq column, never timestamps.
//   - Every read orders by seq ASC.
//   - Writes are idempotent: event ids are content addresses of
//     (run, seq, payload) and inserts use ON CONFLICT DO NOTHING.
//
// # Database configuration
//
//   - WAL mode, synchronous=NORMAL, busy_timeout=5000, foreign_keys=ON
//   - a single connection, since SQLite allows one writer
package store
