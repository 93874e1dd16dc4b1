package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"mediajobs/internal/config"
	"mediajobs/internal/events"
	"mediajobs/internal/logging"
	"mediajobs/internal/queue"
)

const userAgent = "MediaJobs-Go/0.1.0"

// Service defines the notification surface.
type Service interface {
	NotifyJobSucceeded(ctx context.Context, evt events.Event) error
	NotifyJobFailed(ctx context.Context, evt events.Event) error
	TestNotification(ctx context.Context) error
	Enabled() bool
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Enabled() bool { return true }

func (n *ntfyService) NotifyJobSucceeded(ctx context.Context, evt events.Event) error {
	data := payload{
		title:   "MediaJobs - Complete",
		message: fmt.Sprintf("✅ %s finished: %s", engineLabel(evt), inputLabel(evt)),
		tags:    []string{"mediajobs", string(evt.Engine), "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, evt events.Event) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "❌ %s failed: %s", engineLabel(evt), inputLabel(evt))
	if evt.ErrorMessage != nil {
		builder.WriteString("\n")
		builder.WriteString(strings.TrimSpace(*evt.ErrorMessage))
	}
	data := payload{
		title:    "MediaJobs - Error",
		message:  builder.String(),
		tags:     []string{"mediajobs", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "MediaJobs - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"mediajobs", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func engineLabel(evt events.Event) string {
	if evt.Engine == "" {
		return "job"
	}
	return string(evt.Engine)
}

func inputLabel(evt events.Event) string {
	input := strings.TrimSpace(evt.Input)
	if input == "" {
		return evt.JobID
	}
	if strings.Contains(input, "://") {
		return input
	}
	return filepath.Base(input)
}

type noopService struct{}

func (noopService) Enabled() bool                                          { return false }
func (noopService) NotifyJobSucceeded(context.Context, events.Event) error { return nil }
func (noopService) NotifyJobFailed(context.Context, events.Event) error    { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }

// Forwarder turns completed events into notifications.
type Forwarder struct {
	svc       Service
	onSuccess bool
	onError   bool
	logger    *slog.Logger
}

// NewForwarder builds a forwarder honouring the on_success and on_error switches.
func NewForwarder(svc Service, cfg config.Notifications, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		svc:       svc,
		onSuccess: cfg.OnSuccess,
		onError:   cfg.OnError,
		logger:    logging.NewComponentLogger(logger, "notifications"),
	}
}

// Run consumes sub until ctx ends or the subscription closes. Canceled jobs
// are never announced.
func (f *Forwarder) Run(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			f.handle(ctx, evt)
		}
	}
}

func (f *Forwarder) handle(ctx context.Context, evt events.Event) {
	if evt.Type != events.TypeCompleted {
		return
	}
	var err error
	switch {
	case evt.Status == queue.StatusSuccess && f.onSuccess:
		err = f.svc.NotifyJobSucceeded(ctx, evt)
	case evt.Status == queue.StatusError && f.onError:
		err = f.svc.NotifyJobFailed(ctx, evt)
	default:
		return
	}
	if err != nil {
		f.logger.Warn("notification failed",
			logging.String(logging.FieldJobID, evt.JobID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"))
	}
}
