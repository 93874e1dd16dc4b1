// Package logs reads the daemon log file for `mediajobs logs`.
//
// Last returns the final N lines with bounded memory and the offset where
// they end. Follow polls from an offset and hands each new line to a
// callback until its context is canceled, restarting from the top when the
// file is truncated or replaced.
package logs
