// Package daemonctl starts and stops a detached `mediajobs daemon` process
// from the CLI. The daemon itself runs in the foreground; this package only
// launches it in a new session, waits for its socket, and signals it by pid.
package daemonctl
