// Package services defines shared utilities consumed by the job supervisor and
// its outer surfaces.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, engine names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration, execution, and persistence faults.
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability) stays uniform across the subsystem.
package services
