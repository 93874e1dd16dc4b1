// Package runner spawns external tools and turns each subprocess into a
// future: output lines stream through a callback and a single typed Result
// arrives on Done once the process has exited and every line was delivered.
package runner
