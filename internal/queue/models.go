package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mediajobs/internal/engine"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
	StatusCanceled Status = "canceled"
)

// Error messages recorded by the supervisor itself.
const (
	RestartInterruptedMessage = "interrupted by restart"
	StopInterruptedMessage    = "interrupted: supervisor stopped"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

var allStatuses = []Status{
	StatusQueued,
	StatusRunning,
	StatusSuccess,
	StatusError,
	StatusCanceled,
}

var transitions = map[Status][]Status{
	StatusQueued:  {StatusRunning, StatusCanceled, StatusError},
	StatusRunning: {StatusSuccess, StatusError, StatusCanceled},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusError, StatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether s may move to next. A queued job may fail
// straight to error when its command cannot be built or spawned.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Job is one unit of requested work.
type Job struct {
	ID           string         `json:"id"`
	Kind         engine.Kind    `json:"kind"`
	Engine       engine.Name    `json:"engine"`
	Input        string         `json:"input"`
	Output       string         `json:"output"`
	Status       Status         `json:"status"`
	Progress     *float64       `json:"progress"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at"`
	LogsTail     []string       `json:"logs_tail"`
	ErrorMessage *string        `json:"error_message"`
	Options      engine.Options `json:"options"`
}

// IsTerminal reports whether the job has finished.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Transition moves the job to next, stamping StartedAt or CompletedAt.
func (j *Job) Transition(next Status, at time.Time) error {
	if !j.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, next)
	}
	at = at.UTC()
	j.Status = next
	switch {
	case next == StatusRunning:
		j.StartedAt = &at
	case next.IsTerminal():
		j.CompletedAt = &at
	}
	return nil
}

// Fail moves the job to error with the given message.
func (j *Job) Fail(message string, at time.Time) error {
	if err := j.Transition(StatusError, at); err != nil {
		return err
	}
	j.SetError(message)
	return nil
}

// SetError records message, or clears it when empty.
func (j *Job) SetError(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		j.ErrorMessage = nil
		return
	}
	j.ErrorMessage = &message
}

// SetProgress records a known percentage.
func (j *Job) SetProgress(percent float64) {
	j.Progress = &percent
}

// AppendLog adds a line to LogsTail, evicting the oldest lines past limit.
func (j *Job) AppendLog(line string, limit int) {
	j.LogsTail = append(j.LogsTail, line)
	if limit > 0 && len(j.LogsTail) > limit {
		j.LogsTail = append([]string(nil), j.LogsTail[len(j.LogsTail)-limit:]...)
	}
}

// LastLines returns up to n of the most recent log lines.
func (j *Job) LastLines(n int) []string {
	if n <= 0 || len(j.LogsTail) == 0 {
		return nil
	}
	if n > len(j.LogsTail) {
		n = len(j.LogsTail)
	}
	return append([]string(nil), j.LogsTail[len(j.LogsTail)-n:]...)
}

// Clone returns a deep copy safe to hand outside the owning goroutine.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.Progress != nil {
		v := *j.Progress
		cp.Progress = &v
	}
	if j.StartedAt != nil {
		v := *j.StartedAt
		cp.StartedAt = &v
	}
	if j.CompletedAt != nil {
		v := *j.CompletedAt
		cp.CompletedAt = &v
	}
	if j.ErrorMessage != nil {
		v := *j.ErrorMessage
		cp.ErrorMessage = &v
	}
	cp.LogsTail = append([]string(nil), j.LogsTail...)
	cp.Options = j.Options.Clone()
	return &cp
}
