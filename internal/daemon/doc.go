// Package daemon coordinates the long-running mediajobs process.
//
// It wires configuration, the history store, the workflow manager and the
// events hub into a single lifecycle with flock-based locking to prevent
// multiple instances. Optional surfaces (HTTP API, redis fan-out, ntfy
// notifications) are started only when configured, and a failure to reach
// redis or ntfy never blocks job execution.
//
// Keep orchestration logic here: scheduling lives in workflow and command
// construction in engine, while the daemon focuses on startup, shutdown and
// exposing the manager to transports.
package daemon
