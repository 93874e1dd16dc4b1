package events

import (
	"time"

	"mediajobs/internal/engine"
	"mediajobs/internal/queue"
)

// Type distinguishes event payloads.
type Type string

const (
	TypeProgress  Type = "progress"
	TypeStatus    Type = "status"
	TypeCompleted Type = "completed"
)

// Event is one notification about a job.
type Event struct {
	Type         Type         `json:"type"`
	JobID        string       `json:"job_id"`
	Engine       engine.Name  `json:"engine,omitempty"`
	Input        string       `json:"input,omitempty"`
	Status       queue.Status `json:"status,omitempty"`
	Progress     *float64     `json:"progress"`
	LogLine      string       `json:"log_line,omitempty"`
	// Active marks progress lines that show the tool working, including
	// status lines without a percentage.
	Active       bool         `json:"active,omitempty"`
	ErrorMessage *string      `json:"error_message"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Progress builds a progress event for a captured output line.
func Progress(job *queue.Job, line string, at time.Time) Event {
	return Event{
		Type:      TypeProgress,
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  copyFloat(job.Progress),
		LogLine:   line,
		Timestamp: at.UTC(),
	}
}

// Status builds a non-terminal status change event.
func Status(job *queue.Job, at time.Time) Event {
	return Event{
		Type:      TypeStatus,
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  copyFloat(job.Progress),
		Timestamp: at.UTC(),
	}
}

// Completed builds the terminal event for a job. It carries the engine and
// input so consumers can describe the job without a lookup.
func Completed(job *queue.Job, at time.Time) Event {
	evt := Event{
		Type:      TypeCompleted,
		JobID:     job.ID,
		Engine:    job.Engine,
		Input:     job.Input,
		Status:    job.Status,
		Progress:  copyFloat(job.Progress),
		Timestamp: at.UTC(),
	}
	if job.ErrorMessage != nil {
		msg := *job.ErrorMessage
		evt.ErrorMessage = &msg
	}
	return evt
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
