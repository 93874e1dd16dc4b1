package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mediajobs/internal/config"
	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/logging"
	"mediajobs/internal/notifications"
	"mediajobs/internal/queue"
)

type captured struct {
	mu       sync.Mutex
	title    string
	body     string
	tags     string
	priority string
	count    int
}

func newNtfyServer(t *testing.T) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.mu.Lock()
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(body)
		got.count++
		got.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if svc.Enabled() {
		t.Fatal("expected noop service")
	}
	if err := svc.NotifyJobFailed(context.Background(), events.Event{}); err != nil {
		t.Fatalf("noop returned %v", err)
	}
}

func TestNtfyServiceFormatsFailure(t *testing.T) {
	srv, got := newNtfyServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	msg := "exited with code 1"
	evt := events.Event{Type: events.TypeCompleted, JobID: "j", Engine: engine.FFmpeg, Input: "/media/clip.mov", Status: queue.StatusError, ErrorMessage: &msg}
	if err := svc.NotifyJobFailed(context.Background(), evt); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	if got.title != "MediaJobs - Error" {
		t.Fatalf("title = %q", got.title)
	}
	if !strings.Contains(got.body, "ffmpeg failed: clip.mov") || !strings.Contains(got.body, msg) {
		t.Fatalf("body = %q", got.body)
	}
	if got.priority != "high" {
		t.Fatalf("priority = %q", got.priority)
	}
}

func TestNtfyServiceReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	if err := notifications.NewService(&cfg).TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403")
	}
}

func TestForwarderHonoursSwitches(t *testing.T) {
	srv, got := newNtfyServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.OnSuccess = false
	svc := notifications.NewService(&cfg)

	hub := events.NewHub()
	sub := hub.Subscribe(8)
	fwd := notifications.NewForwarder(svc, cfg.Notifications, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fwd.Run(ctx, sub)
		close(done)
	}()

	hub.Publish(events.Event{Type: events.TypeCompleted, JobID: "ok", Status: queue.StatusSuccess})
	hub.Publish(events.Event{Type: events.TypeCompleted, JobID: "gone", Status: queue.StatusCanceled})
	hub.Publish(events.Event{Type: events.TypeProgress, JobID: "p", Status: queue.StatusRunning})
	hub.Publish(events.Event{Type: events.TypeCompleted, JobID: "bad", Status: queue.StatusError})

	deadline := time.Now().Add(5 * time.Second)
	for {
		got.mu.Lock()
		count := got.count
		got.mu.Unlock()
		if count >= 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done
	sub.Close()

	got.mu.Lock()
	defer got.mu.Unlock()
	if got.count != 1 {
		t.Fatalf("expected exactly one notification, got %d", got.count)
	}
	if got.title != "MediaJobs - Error" {
		t.Fatalf("title = %q", got.title)
	}
}
