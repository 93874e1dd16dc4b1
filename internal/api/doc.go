// Package api defines wire-format types and converters shared by the IPC and
// HTTP layers. It translates queue jobs and workflow summaries into
// transport-friendly DTOs so clients never couple to internal types.
//
// # Key Types
//
// Job: transport representation of a queue job with progress, timestamps and
// the captured log tail.
//
// EnqueueRequest: flattened enqueue payload accepted by both transports.
//
// DaemonStatus: aggregated runtime information including dependencies and
// preflight results.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Status and engine enums are exposed as
// lowercase strings. Timestamps use RFC3339 with milliseconds. Unknown
// progress is encoded as null rather than zero.
package api
