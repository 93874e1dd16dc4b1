package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/logging"
	"mediajobs/internal/queue"
	"mediajobs/internal/services"
)

// Enqueue validates req, records a queued job and promotes queued jobs. It
// returns as soon as the job is recorded; execution is asynchronous.
func (m *Manager) Enqueue(ctx context.Context, req Request) (string, error) {
	name, err := engine.Parse(req.Engine)
	if err != nil {
		return "", err
	}
	kind := engine.KindOf(name)
	if req.Kind != "" && req.Kind != kind {
		return "", services.Wrap(services.ErrValidation, "workflow", "enqueue",
			fmt.Sprintf("engine %s performs %s, not %s", name, kind, req.Kind), nil)
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return "", services.Wrap(services.ErrValidation, "workflow", "enqueue", "input is required", nil)
	}

	var id string
	err = m.do(ctx, func(ctx context.Context) {
		now := m.now().UTC()
		job := &queue.Job{
			ID:        m.newID(),
			Kind:      kind,
			Engine:    name,
			Input:     input,
			Output:    strings.TrimSpace(req.Output),
			Status:    queue.StatusQueued,
			CreatedAt: now,
			Options:   req.Options.Clone(),
		}
		id = job.ID
		m.registry.Add(job)
		m.persist(ctx, job)
		m.publisher.Publish(events.Status(job, now))

		ctx = services.WithEngine(services.WithJobID(ctx, job.ID), string(name))
		logging.WithContext(ctx, m.logger).Info("job queued",
			logging.String("input", input),
			logging.String(logging.FieldEventType, "job_queued"))
		m.processQueue(ctx)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Cancel stops a queued or running job. It reports false for unknown or
// already finished jobs. Termination is requested, not awaited.
func (m *Manager) Cancel(ctx context.Context, id string) bool {
	var canceled bool
	_ = m.do(ctx, func(ctx context.Context) {
		job, ok := m.registry.Get(strings.TrimSpace(id))
		if !ok {
			return
		}
		canceled = m.cancelJob(ctx, job)
		m.processQueue(ctx)
	})
	return canceled
}

// CancelAll cancels every queued and running job and returns how many changed.
func (m *Manager) CancelAll(ctx context.Context) int {
	var count int
	_ = m.do(ctx, func(ctx context.Context) {
		m.draining = true
		// Queued first so no freed slot promotes a job about to be canceled.
		for _, job := range m.registry.QueuedOldestFirst() {
			if m.cancelJob(ctx, job) {
				count++
			}
		}
		for _, job := range m.registry.Running() {
			if m.cancelJob(ctx, job) {
				count++
			}
		}
		m.draining = false
		m.processQueue(ctx)
	})
	return count
}

// List returns snapshots of the active queue and recent history.
func (m *Manager) List(ctx context.Context) Listing {
	listing := Listing{Queue: []*queue.Job{}, History: []*queue.Job{}}
	_ = m.do(ctx, func(context.Context) {
		for _, job := range m.registry.Active() {
			listing.Queue = append(listing.Queue, job.Clone())
		}
		for _, job := range m.registry.RecentTerminal(m.historyLimit) {
			listing.History = append(listing.History, job.Clone())
		}
	})
	return listing
}

// Get returns a snapshot of one job.
func (m *Manager) Get(ctx context.Context, id string) (*queue.Job, bool) {
	var (
		snapshot *queue.Job
		found    bool
	)
	_ = m.do(ctx, func(context.Context) {
		if job, ok := m.registry.Get(strings.TrimSpace(id)); ok {
			snapshot = job.Clone()
			found = true
		}
	})
	return snapshot, found
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	m.mu.RUnlock()

	summary := StatusSummary{
		Running:       running,
		MaxConcurrent: m.maxConcurrent,
		Root:          m.store.Root(),
		Persistent:    m.store.Enabled(),
	}
	_ = m.do(ctx, func(context.Context) {
		summary.RunningJobs = m.registry.CountRunning()
		summary.QueuedJobs = m.registry.CountQueued()
		summary.TotalJobs = m.registry.Len()
	})
	return summary
}

// Initialize points the manager at a storage root. When the root changes,
// running jobs are terminated and recorded as canceled in the old history,
// the in-memory table is discarded, and the table is reloaded from the new
// root. A persistence failure leaves the manager memory-only; it is logged
// and not returned.
func (m *Manager) Initialize(ctx context.Context, root string) error {
	root = strings.TrimSpace(root)
	if root != "" {
		root = filepath.Clean(root)
	}
	return m.do(ctx, func(ctx context.Context) {
		if m.initialized && root == m.store.Root() {
			// Same root: the table is current, but a restarted loop still
			// owes the queued jobs a promotion pass.
			m.processQueue(ctx)
			return
		}

		m.draining = true
		for _, job := range m.registry.Running() {
			m.terminate(job)
			m.finish(ctx, job, queue.StatusCanceled, "", nil)
		}
		m.draining = false

		if _, err := m.store.Initialize(root); err != nil {
			m.logger.Warn("history unavailable; continuing without persistence",
				logging.String("root", root),
				logging.Error(err),
				logging.String("failure_kind", string(services.Classify(err))),
				logging.String(logging.FieldEventType, "history_unavailable"),
				logging.String(logging.FieldErrorHint, "job state will be lost on restart"))
		}
		m.initialized = true
		m.load(ctx)
		m.processQueue(ctx)
	})
}
