package workflow

import (
	"context"
	"errors"

	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/proctree"
	"mediajobs/internal/queue"
	"mediajobs/internal/runner"
)

// ErrNotRunning is returned when the manager loop is not accepting calls.
var ErrNotRunning = errors.New("workflow manager not running")

// History is the durable job log the manager appends to.
type History interface {
	Initialize(root string) (bool, error)
	Append(ctx context.Context, job *queue.Job)
	LoadAll(ctx context.Context) (map[string]*queue.Job, error)
	Root() string
	Enabled() bool
}

// CommandBuilder resolves a job into a subprocess invocation.
type CommandBuilder interface {
	Build(name engine.Name, input, output string, opts engine.Options) (engine.Command, error)
}

// Process is a spawned subprocess.
type Process interface {
	PID() int
	Done() <-chan runner.Result
}

// Launcher spawns subprocesses.
type Launcher interface {
	Launch(path string, args []string, onLine func(string)) (Process, error)
}

// Terminator kills a subprocess tree.
type Terminator interface {
	Terminate(pid int) bool
}

// Request is an enqueue payload.
type Request struct {
	Kind    engine.Kind    `json:"kind,omitempty"`
	Engine  string         `json:"engine"`
	Input   string         `json:"input"`
	Output  string         `json:"output"`
	Options engine.Options `json:"options"`
}

// Listing is the queue view: active jobs oldest first and recent history
// most recently completed first.
type Listing struct {
	Queue   []*queue.Job `json:"queue"`
	History []*queue.Job `json:"history"`
}

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running       bool   `json:"running"`
	Root          string `json:"root"`
	Persistent    bool   `json:"persistent"`
	MaxConcurrent int    `json:"max_concurrent"`
	RunningJobs   int    `json:"running_jobs"`
	QueuedJobs    int    `json:"queued_jobs"`
	TotalJobs     int    `json:"total_jobs"`
}

type execLauncher struct{}

func (execLauncher) Launch(path string, args []string, onLine func(string)) (Process, error) {
	proc, err := runner.Start(path, args, onLine)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

type treeTerminator struct{}

func (treeTerminator) Terminate(pid int) bool {
	return proctree.Terminate(pid)
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

type lineEvent struct {
	jobID string
	line  string
}

type exitEvent struct {
	jobID  string
	result runner.Result
}
