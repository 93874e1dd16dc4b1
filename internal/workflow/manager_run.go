package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/logging"
	"mediajobs/internal/queue"
	"mediajobs/internal/runner"
	"mediajobs/internal/services"
	"mediajobs/internal/textutil"
)

var errNoResult = errors.New("process ended without reporting a result")

// processQueue fills free slots with the oldest queued jobs. It is safe to
// call redundantly; a call made while promotion is already underway (for
// example from a spawn failure) causes one more pass instead of recursing.
func (m *Manager) processQueue(ctx context.Context) {
	if m.draining {
		return
	}
	if m.promoting {
		m.repromote = true
		return
	}
	m.promoting = true
	defer func() { m.promoting = false }()

	for {
		m.repromote = false
		available := m.maxConcurrent - m.registry.CountRunning()
		if available <= 0 {
			return
		}
		queued := m.registry.QueuedOldestFirst()
		if len(queued) == 0 {
			return
		}
		if len(queued) > available {
			queued = queued[:available]
		}
		for _, job := range queued {
			m.execute(ctx, job)
		}
		if !m.repromote {
			return
		}
	}
}

func (m *Manager) execute(ctx context.Context, job *queue.Job) {
	if job.Status != queue.StatusQueued {
		return
	}
	now := m.now()
	if err := job.Transition(queue.StatusRunning, now); err != nil {
		m.logger.Warn("cannot start job", logging.String(logging.FieldJobID, job.ID), logging.Error(err))
		return
	}
	job.Progress = nil
	m.persist(ctx, job)
	m.publisher.Publish(events.Status(job, now))

	logger := m.jobLogger(ctx, job)
	cmd, err := m.builder.Build(job.Engine, job.Input, job.Output, job.Options)
	if err != nil {
		m.finish(ctx, job, queue.StatusError, err.Error(), err)
		return
	}
	logger.Info("starting job",
		logging.String("command", cmd.String()),
		logging.String("preset", cmd.Preset),
		logging.String("output_path", cmd.OutputPath),
		logging.String(logging.FieldEventType, "job_started"))

	jobID := job.ID
	loopCtx := m.loopCtx
	proc, err := m.launcher.Launch(cmd.Path, cmd.Args, func(line string) {
		select {
		case m.lines <- lineEvent{jobID: jobID, line: line}:
		case <-loopCtx.Done():
		}
	})
	if err != nil {
		m.finish(ctx, job, queue.StatusError, fmt.Sprintf("failed to start %s: %v", job.Engine, err), err)
		return
	}
	m.registry.SetHandle(job.ID, proc)
	logger.Debug("subprocess spawned", logging.Int("pid", proc.PID()))

	go func() {
		var result runner.Result
		select {
		case res, ok := <-proc.Done():
			if ok {
				result = res
			} else {
				result = runner.Result{Err: errNoResult}
			}
		case <-loopCtx.Done():
			return
		}
		select {
		case m.exits <- exitEvent{jobID: jobID, result: result}:
		case <-loopCtx.Done():
		}
	}()
}

func (m *Manager) handleLine(evt lineEvent) {
	job, ok := m.registry.Get(evt.jobID)
	if !ok || job.Status != queue.StatusRunning {
		return
	}
	line := textutil.TruncateLine(evt.line, maxLogLineBytes)
	if line == "" {
		return
	}
	job.AppendLog(line, m.logsTail)
	percent, known := engine.ParseProgress(job.Engine, line)
	if known {
		job.SetProgress(percent)
	}
	progress := events.Progress(job, line, m.now())
	progress.Active = known || engine.Inspect(job.Engine, line).Live
	m.publisher.Publish(progress)
}

func (m *Manager) handleExit(ctx context.Context, evt exitEvent) {
	job, ok := m.registry.Get(evt.jobID)
	if !ok || job.Status != queue.StatusRunning {
		// Canceled (or reloaded away) before the process exited.
		m.logger.Debug("ignoring exit for job no longer running", logging.String(logging.FieldJobID, evt.jobID))
		return
	}
	m.registry.ClearHandle(job.ID)

	res := evt.result
	switch {
	case res.Err != nil:
		m.finish(ctx, job, queue.StatusError, fmt.Sprintf("process failed: %v", res.Err), res.Err)
	case res.Signal != "":
		message := "terminated by signal " + res.Signal
		m.finish(ctx, job, queue.StatusError, message,
			services.Wrap(services.ErrExternalTool, "workflow", "wait", message, nil))
	case res.ExitCode == nil:
		// yt-dlp can finish cleanly without an exit code on some platforms.
		// No code and no signal counts as success for every engine.
		m.jobLogger(ctx, job).Info("exit code unavailable; treating as success",
			logging.String(logging.FieldEventType, "exit_code_missing"))
		m.finish(ctx, job, queue.StatusSuccess, "", nil)
	case *res.ExitCode == 0:
		job.SetProgress(100)
		m.finish(ctx, job, queue.StatusSuccess, "", nil)
	default:
		message := fmt.Sprintf("exited with code %d", *res.ExitCode)
		if tail := job.LastLines(failureTailLines); len(tail) > 0 {
			message += "\n" + strings.Join(tail, "\n")
		}
		m.finish(ctx, job, queue.StatusError, message,
			services.Wrap(services.ErrExternalTool, "workflow", "wait", fmt.Sprintf("exit code %d", *res.ExitCode), nil))
	}
}

// cancelJob marks a queued or running job canceled. A running job's process
// tree is killed first; its eventual exit is ignored by handleExit.
func (m *Manager) cancelJob(ctx context.Context, job *queue.Job) bool {
	switch job.Status {
	case queue.StatusQueued:
		m.finish(ctx, job, queue.StatusCanceled, "", nil)
		return true
	case queue.StatusRunning:
		m.terminate(job)
		m.finish(ctx, job, queue.StatusCanceled, "", nil)
		return true
	default:
		return false
	}
}

func (m *Manager) terminate(job *queue.Job) {
	handle, ok := m.registry.Handle(job.ID)
	if !ok {
		return
	}
	if !m.terminator.Terminate(handle.PID()) {
		m.logger.Warn("terminate process tree failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.Int("pid", handle.PID()),
			logging.String(logging.FieldEventType, "terminate_failed"),
			logging.String(logging.FieldErrorHint, "the process may have already exited"))
	}
	m.registry.ClearHandle(job.ID)
}

// finish is the only path into a terminal state, so the completed event is
// published once per job.
func (m *Manager) finish(ctx context.Context, job *queue.Job, status queue.Status, message string, cause error) {
	now := m.now()
	var err error
	if status == queue.StatusError {
		err = job.Fail(message, now)
	} else {
		err = job.Transition(status, now)
	}
	if err != nil {
		m.logger.Warn("ignoring invalid transition",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err),
			logging.Alert("invalid_transition"))
		return
	}
	m.registry.ClearHandle(job.ID)
	m.persist(ctx, job)
	m.publisher.Publish(events.Completed(job, now))

	logger := m.jobLogger(ctx, job)
	switch status {
	case queue.StatusSuccess:
		logger.Info("job completed", logging.String(logging.FieldEventType, "job_completed"))
	case queue.StatusCanceled:
		logger.Info("job canceled", logging.String(logging.FieldEventType, "job_canceled"))
	default:
		logger.Warn("job failed",
			logging.String("message", message),
			logging.String("failure_kind", string(services.Classify(cause))),
			logging.String(logging.FieldEventType, "job_failed"),
			logging.String(logging.FieldErrorHint, failureHint(cause)))
	}
	m.processQueue(ctx)
}

func failureHint(err error) string {
	switch services.Classify(err) {
	case services.FailureConfiguration:
		return "fix the engine or tool configuration and enqueue the job again"
	default:
		return "inspect the job log tail; re-enqueue once the cause is fixed"
	}
}

// load replaces the table from history. Jobs recorded as running belonged to
// a dead supervisor and are failed.
func (m *Manager) load(ctx context.Context) {
	jobs, err := m.store.LoadAll(ctx)
	if err != nil {
		m.logger.Warn("history reload incomplete",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_load_failed"),
			logging.String(logging.FieldErrorHint, "check the history file under the workflow root"))
	}
	m.registry.Load(jobs)

	recovered := 0
	for _, job := range m.registry.Running() {
		m.finish(ctx, job, queue.StatusError, queue.RestartInterruptedMessage, nil)
		recovered++
	}
	m.logger.Info("job table loaded",
		logging.Int("jobs", m.registry.Len()),
		logging.Int("queued", m.registry.CountQueued()),
		logging.Int("interrupted", recovered),
		logging.String("root", m.store.Root()))
}

func (m *Manager) persist(ctx context.Context, job *queue.Job) {
	m.store.Append(ctx, job)
}

func (m *Manager) jobLogger(ctx context.Context, job *queue.Job) *slog.Logger {
	ctx = services.WithEngine(services.WithJobID(ctx, job.ID), string(job.Engine))
	return logging.WithContext(ctx, m.logger)
}
