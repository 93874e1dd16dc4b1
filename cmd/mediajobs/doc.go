// Command mediajobs runs the media job daemon and talks to it over the local
// IPC socket.
//
// `mediajobs daemon` runs the supervisor in the foreground. Every other
// command except presets and config init dials the socket under the
// configured log directory (or --socket) and renders the reply as a table or,
// with --json, as the raw API payload.
package main
