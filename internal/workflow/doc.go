// Package workflow supervises media jobs.
//
// The Manager owns the job table from a single goroutine. Public calls are
// shipped to that goroutine as closures; subprocess output lines and exit
// results arrive on their own channels. Because every mutation happens on the
// loop, the concurrency cap, FIFO promotion and the "late exit after cancel is
// ignored" rule reduce to plain checks against current state.
//
// Every transition is appended to the history store before it is published to
// observers. Completed events are emitted from finish only, so each job
// announces its terminal state exactly once.
package workflow
