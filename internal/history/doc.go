// Package history persists every job revision in an append-only log under the
// workflow root and rebuilds the job table from it.
//
// Two backends exist: a JSON-lines file (history.jsonl) and a SQLite table of
// revisions (history.db). Both are append-only and reduce on load so the last
// revision of a job wins. A flock on history.lock keeps a second supervisor
// from writing the same root; when the lock is held elsewhere the store runs
// memory-only for the session.
//
// Append never returns an error. Persistence faults are logged and the
// in-memory table stays authoritative.
package history
