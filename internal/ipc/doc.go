// Package ipc exposes the daemon over JSON-RPC on a Unix socket and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. Payloads
// reuse the api package types so the HTTP and socket transports stay in step.
package ipc
