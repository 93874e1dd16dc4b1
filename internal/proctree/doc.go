// Package proctree terminates a subprocess together with everything it spawned.
//
// Prepare must be applied to a command before it starts so the child leads its
// own process group. Terminate then kills the group, falling back to the
// single process when the group kill fails.
package proctree
