// Package deps resolves the external tools each engine shells out to so the
// daemon and CLI can report what is missing before a job fails on spawn.
package deps
