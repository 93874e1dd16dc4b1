// Package engine maps a job's engine tag and options to the external tool
// invocation that performs it.
//
// Engines are a closed set of tagged values. Each one has a lookup-table entry
// carrying its kind, tool path selector, preset table, argument builder and
// progress parser. Unknown tags are rejected by Parse at the boundary so the
// scheduler never sees them. The package also owns redaction of sensitive
// argument values for logging and the stateless progress parsers.
package engine
