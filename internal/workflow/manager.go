package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediajobs/internal/config"
	"mediajobs/internal/events"
	"mediajobs/internal/logging"
	"mediajobs/internal/queue"
)

// maxLogLineBytes caps a single captured output line.
const maxLogLineBytes = 4096

// failureTailLines is how many log lines a non-zero exit message carries.
const failureTailLines = 5

// Manager coordinates job execution.
type Manager struct {
	maxConcurrent int
	logsTail      int
	historyLimit  int
	initialRoot   string

	store      History
	builder    CommandBuilder
	launcher   Launcher
	terminator Terminator
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string

	// Loop-owned state.
	registry    *queue.Registry
	initialized bool
	promoting   bool
	repromote   bool
	draining    bool

	calls   chan func()
	lines   chan lineEvent
	exits   chan exitEvent
	loopCtx context.Context

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithLauncher replaces the subprocess launcher.
func WithLauncher(l Launcher) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.launcher = l
		}
	}
}

// WithTerminator replaces the process tree terminator.
func WithTerminator(t Terminator) ManagerOption {
	return func(m *Manager) {
		if t != nil {
			m.terminator = t
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides job id generation.
func WithIDGenerator(newID func() string) ManagerOption {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// NewManager constructs a workflow manager. publisher may be nil.
func NewManager(cfg *config.Config, store History, builder CommandBuilder, publisher events.Publisher, logger *slog.Logger, opts ...ManagerOption) *Manager {
	defaults := config.Default()
	if cfg == nil {
		cfg = &defaults
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	m := &Manager{
		maxConcurrent: cfg.Jobs.MaxConcurrent,
		logsTail:      cfg.Jobs.LogsTail,
		historyLimit:  cfg.Jobs.HistoryLimit,
		initialRoot:   cfg.Paths.WorkflowRoot,
		store:         store,
		builder:       builder,
		launcher:      execLauncher{},
		terminator:    treeTerminator{},
		publisher:     publisher,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		now:           time.Now,
		newID:         uuid.NewString,
		registry:      queue.NewRegistry(),
		calls:         make(chan func()),
		lines:         make(chan lineEvent),
		exits:         make(chan exitEvent),
	}
	if m.maxConcurrent <= 0 {
		m.maxConcurrent = defaults.Jobs.MaxConcurrent
	}
	if m.logsTail <= 0 {
		m.logsTail = defaults.Jobs.LogsTail
	}
	if m.historyLimit <= 0 {
		m.historyLimit = defaults.Jobs.HistoryLimit
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the loop, loads the job table from the configured root and
// promotes queued jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.store == nil || m.builder == nil {
		m.mu.Unlock()
		return errors.New("workflow requires a history store and command builder")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.loopCtx = runCtx
	m.done = make(chan struct{})
	m.running = true
	m.mu.Unlock()

	go m.loop(runCtx)

	return m.Initialize(ctx, m.initialRoot)
}

// Stop terminates running subprocesses, records them as interrupted and
// waits for the loop to exit. Queued jobs stay queued for the next session.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	<-done
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)
	// Writes issued by the loop must survive cancellation of the loop itself.
	persistCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			m.shutdown(persistCtx)
			return
		case fn := <-m.calls:
			fn()
		case evt := <-m.lines:
			m.handleLine(evt)
		case evt := <-m.exits:
			m.handleExit(persistCtx, evt)
		}
	}
}

// do runs fn on the loop and waits for it to finish. fn receives a context
// that is not canceled when the caller goes away, so a started transition is
// always persisted.
func (m *Manager) do(ctx context.Context, fn func(ctx context.Context)) error {
	m.mu.RLock()
	running := m.running
	done := m.done
	m.mu.RUnlock()
	if !running {
		return ErrNotRunning
	}

	opCtx := context.WithoutCancel(ctx)
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn(opCtx)
	}
	select {
	case m.calls <- call:
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return ErrNotRunning
	}
	<-finished
	return nil
}

func (m *Manager) shutdown(ctx context.Context) {
	m.draining = true
	for _, job := range m.registry.Running() {
		m.terminate(job)
		m.finish(ctx, job, queue.StatusError, queue.StopInterruptedMessage, nil)
	}
	m.draining = false
	m.logger.Info("workflow manager stopped")
}
