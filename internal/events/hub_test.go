package events

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"mediajobs/internal/queue"
)

func TestHubBroadcasts(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(4)
	b := hub.Subscribe(4)
	defer a.Close()
	defer b.Close()

	hub.Publish(Event{Type: TypeStatus, JobID: "x"})
	for _, sub := range []*Subscription{a, b} {
		select {
		case evt := <-sub.Events():
			if evt.JobID != "x" {
				t.Fatalf("JobID = %q", evt.JobID)
			}
		default:
			t.Fatal("subscriber missed event")
		}
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)
	defer sub.Close()

	hub.Publish(Event{JobID: "1"})
	hub.Publish(Event{JobID: "2"})
	if sub.Dropped() != 1 {
		t.Fatalf("Dropped = %d", sub.Dropped())
	}
	if evt := <-sub.Events(); evt.JobID != "1" {
		t.Fatalf("kept wrong event %q", evt.JobID)
	}
}

func TestReleaseReportsDroppedEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hub := NewHub()

	quiet := hub.Subscribe(4)
	hub.Publish(Event{JobID: "1"})
	quiet.Release(logger, "quiet")
	if buf.Len() != 0 {
		t.Fatalf("unexpected log for subscriber without drops: %s", buf.String())
	}

	slow := hub.Subscribe(1)
	hub.Publish(Event{JobID: "1"})
	hub.Publish(Event{JobID: "2"})
	hub.Publish(Event{JobID: "3"})
	slow.Release(logger, "redis")
	out := buf.String()
	for _, want := range []string{"consumer=redis", "dropped=2", "event_type=events_dropped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %q", out, want)
		}
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount = %d after Release", hub.SubscriberCount())
	}
}

func TestSubscriptionCloseAndHubClose(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)
	sub.Close()
	sub.Close()
	if _, ok := <-sub.Events(); ok {
		t.Fatal("closed subscription delivered an event")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount = %d", hub.SubscriberCount())
	}

	other := hub.Subscribe(1)
	hub.Close()
	if _, ok := <-other.Events(); ok {
		t.Fatal("hub close should close subscriptions")
	}
	other.Close()
	hub.Publish(Event{JobID: "late"})

	late := hub.Subscribe(1)
	if _, ok := <-late.Events(); ok {
		t.Fatal("subscribe after close should be closed")
	}
}

func TestCompletedCopiesErrorMessage(t *testing.T) {
	job := &queue.Job{ID: "a", Status: queue.StatusError}
	job.SetError("exited with code 1")
	evt := Completed(job, time.Now())
	*job.ErrorMessage = "changed"
	if evt.ErrorMessage == nil || *evt.ErrorMessage != "exited with code 1" {
		t.Fatalf("ErrorMessage = %v", evt.ErrorMessage)
	}
	if evt.Type != TypeCompleted || evt.Status != queue.StatusError {
		t.Fatalf("unexpected event %+v", evt)
	}
}
