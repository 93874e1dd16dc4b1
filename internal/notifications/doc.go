// Package notifications pushes job completion messages to ntfy.
//
// The Service consumes completed events from an events subscription and
// degrades to a no-op when no topic is configured. Which outcomes notify is
// controlled by notifications.on_success and notifications.on_error.
package notifications
