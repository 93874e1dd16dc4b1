package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mediajobs/internal/config"
	"mediajobs/internal/deps"
	"mediajobs/internal/events"
	"mediajobs/internal/history"
	"mediajobs/internal/logging"
	"mediajobs/internal/notifications"
	"mediajobs/internal/preflight"
	"mediajobs/internal/queue"
	"mediajobs/internal/workflow"
)

// ErrNotRunning is returned by job operations while the daemon is stopped.
var ErrNotRunning = errors.New("daemon not running")

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	workflow *workflow.Manager
	hub      *events.Hub
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	api     *apiServer
	redis   *events.RedisPublisher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
	channel atomic.Value
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	LockFilePath  string
	HistoryPath   string
	EventsChannel string
	Subscribers   int
	Workflow      workflow.StatusSummary
	Dependencies  []deps.Status
	Preflight     []preflight.Result
}

// New constructs a daemon with initialized dependencies. hub must be the
// publisher the manager was built with so transports see its events.
func New(cfg *config.Config, store *history.Store, wf *workflow.Manager, hub *events.Hub, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil || hub == nil {
		return nil, errors.New("daemon requires config, history store, workflow manager, and events hub")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		hub:      hub,
		notifier: notifications.NewService(cfg),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, then launches the workflow manager and the
// configured surfaces.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(d.cfg.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediajobs daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	// Subscribe before the manager loads history so recovery events reach
	// every consumer.
	d.startRedis(runCtx)
	d.startNotifications(runCtx)

	if err := d.workflow.Start(ctx); err != nil {
		d.teardown()
		return fmt.Errorf("start workflow: %w", err)
	}

	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.workflow.Stop()
		d.teardown()
		return err
	}
	if err := api.start(runCtx); err != nil {
		d.workflow.Stop()
		d.teardown()
		return err
	}
	d.api = api

	for _, result := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			"fix the path or service before relying on it",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}
	if missing := deps.MissingRequired(preflight.CheckSystemDeps(d.cfg)); len(missing) > 0 {
		logging.WarnWithContext(d.logger, "engine tools missing", "dependency_missing",
			"install the tools or set their paths under [tools]; jobs for these engines will fail",
			logging.Strings("tools", missing))
	}

	d.running.Store(true)
	d.logger.Info("mediajobs daemon started",
		logging.String("lock", d.lockPath),
		logging.String("socket", d.cfg.SocketPath()),
		logging.Int("max_concurrent", d.cfg.Jobs.MaxConcurrent),
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (d *Daemon) startRedis(ctx context.Context) {
	url := strings.TrimSpace(d.cfg.Events.RedisURL)
	if url == "" {
		return
	}
	publisher, err := events.NewRedisPublisher(ctx, url, d.cfg.Events.RedisChannel, d.logger)
	if err != nil {
		logging.WarnWithContext(d.logger, "redis events disabled", "redis_unavailable",
			"check events.redis_url; jobs continue without redis fan-out",
			logging.Error(err))
		return
	}
	d.redis = publisher
	d.channel.Store(publisher.Channel())
	sub := d.hub.Subscribe(events.DefaultBuffer)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer sub.Release(d.logger, "redis")
		publisher.Run(ctx, sub)
	}()
	d.logger.Info("redis events enabled", logging.String("channel", publisher.Channel()))
}

func (d *Daemon) startNotifications(ctx context.Context) {
	if !d.notifier.Enabled() {
		return
	}
	forwarder := notifications.NewForwarder(d.notifier, d.cfg.Notifications, d.logger)
	sub := d.hub.Subscribe(events.DefaultBuffer)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer sub.Release(d.logger, "notifications")
		forwarder.Run(ctx, sub)
	}()
}

// teardown stops the subscribers and releases the lock. Callers hold d.mu.
func (d *Daemon) teardown() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.logger.Debug("redis close failed", logging.Error(err))
		}
		d.redis = nil
		d.channel.Store("")
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			"remove the lock file if the next start reports another instance",
			logging.String("lock", d.lockPath),
			logging.Error(err))
	}
}

// Stop shuts down the API, the manager and the subscribers in reverse start
// order and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	d.running.Store(false)

	d.api.stop()
	d.api = nil
	d.workflow.Stop()
	d.teardown()
	d.logger.Info("mediajobs daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.hub.Close()
	return d.store.Close()
}

// Running reports whether Start has succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Hub returns the events hub transports subscribe to.
func (d *Daemon) Hub() *events.Hub {
	return d.hub
}

// Enqueue queues a job.
func (d *Daemon) Enqueue(ctx context.Context, req workflow.Request) (string, error) {
	if !d.running.Load() {
		return "", ErrNotRunning
	}
	return d.workflow.Enqueue(ctx, req)
}

// Cancel cancels one job. It reports false for unknown or finished jobs.
func (d *Daemon) Cancel(ctx context.Context, id string) (bool, error) {
	if !d.running.Load() {
		return false, ErrNotRunning
	}
	return d.workflow.Cancel(ctx, id), nil
}

// CancelAll cancels every queued and running job.
func (d *Daemon) CancelAll(ctx context.Context) (int, error) {
	if !d.running.Load() {
		return 0, ErrNotRunning
	}
	return d.workflow.CancelAll(ctx), nil
}

// List returns the queue and recent history.
func (d *Daemon) List(ctx context.Context) (workflow.Listing, error) {
	if !d.running.Load() {
		return workflow.Listing{}, ErrNotRunning
	}
	return d.workflow.List(ctx), nil
}

// Job returns one job, or nil when the id is unknown.
func (d *Daemon) Job(ctx context.Context, id string) (*queue.Job, error) {
	if !d.running.Load() {
		return nil, ErrNotRunning
	}
	job, ok := d.workflow.Get(ctx, id)
	if !ok {
		return nil, nil
	}
	return job, nil
}

// SetRoot switches the workflow root. Running jobs are canceled.
func (d *Daemon) SetRoot(ctx context.Context, root string) (string, error) {
	if !d.running.Load() {
		return "", ErrNotRunning
	}
	expanded, err := config.ExpandPath(strings.TrimSpace(root))
	if err != nil {
		return "", err
	}
	if err := d.workflow.Initialize(ctx, expanded); err != nil {
		return "", err
	}
	d.logger.Info("workflow root changed",
		logging.String("root", expanded),
		logging.String(logging.FieldEventType, "root_changed"))
	return expanded, nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if !d.notifier.Enabled() {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		HistoryPath:  d.store.Path(),
		Subscribers:  d.hub.SubscriberCount(),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
		Preflight:    preflight.RunAll(ctx, d.cfg),
	}
	status.EventsChannel, _ = d.channel.Load().(string)
	if status.Running {
		status.Workflow = d.workflow.Status(ctx)
	} else {
		status.Workflow = workflow.StatusSummary{
			MaxConcurrent: d.cfg.Jobs.MaxConcurrent,
			Root:          d.store.Root(),
			Persistent:    d.store.Enabled(),
		}
	}
	return status
}
