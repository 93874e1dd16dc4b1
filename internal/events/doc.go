// Package events fans job progress and completion out to observers.
//
// The workflow manager publishes into a Hub. Subscribers (the websocket
// endpoint, the redis publisher, the ntfy notifier) each get a buffered
// channel; a subscriber that falls behind loses events rather than stalling
// the manager. Delivery is best-effort.
package events
