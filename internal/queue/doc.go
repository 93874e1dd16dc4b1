// Package queue holds the in-memory job table for the supervisor.
//
// Job captures one download or conversion request and its lifecycle. The
// Registry indexes jobs by id, orders them for promotion, and tracks the live
// subprocess handle of each running job. Registry is not safe for concurrent
// use: the workflow manager owns it from a single goroutine.
//
// When you add statuses, update the transition table in models.go; terminal
// statuses must never gain outgoing transitions.
package queue
