package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mediajobs/internal/config"
	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/history"
	"mediajobs/internal/logging"
	"mediajobs/internal/queue"
	"mediajobs/internal/runner"
)

type fakeProcess struct {
	pid    int
	path   string
	args   []string
	onLine func(string)
	done   chan runner.Result
}

func (p *fakeProcess) PID() int                   { return p.pid }
func (p *fakeProcess) Done() <-chan runner.Result { return p.done }

func (p *fakeProcess) emit(lines ...string) {
	for _, line := range lines {
		p.onLine(line)
	}
}

func (p *fakeProcess) exitCode(code int) {
	p.done <- runner.Result{ExitCode: &code}
}

type fakeLauncher struct {
	mu      sync.Mutex
	procs   []*fakeProcess
	failFor map[string]error
	nextPID int
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{failFor: make(map[string]error), nextPID: 1000}
}

func (l *fakeLauncher) Launch(path string, args []string, onLine func(string)) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	input := args[len(args)-1]
	if err := l.failFor[input]; err != nil {
		return nil, err
	}
	l.nextPID++
	proc := &fakeProcess{
		pid:    l.nextPID,
		path:   path,
		args:   append([]string(nil), args...),
		onLine: onLine,
		done:   make(chan runner.Result, 1),
	}
	l.procs = append(l.procs, proc)
	return proc, nil
}

func (l *fakeLauncher) launchedInputs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.procs))
	for i, proc := range l.procs {
		out[i] = proc.args[len(proc.args)-1]
	}
	return out
}

func (l *fakeLauncher) process(t *testing.T, input string) *fakeProcess {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, proc := range l.procs {
		if proc.args[len(proc.args)-1] == input {
			return proc
		}
	}
	t.Fatalf("no process launched for %s", input)
	return nil
}

type fakeTerminator struct {
	mu     sync.Mutex
	killed []int
}

func (f *fakeTerminator) Terminate(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	return true
}

func (f *fakeTerminator) pids() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.killed...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	ops    *opLog
}

func (p *recordingPublisher) Publish(evt events.Event) {
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
	if p.ops != nil {
		p.ops.add(fmt.Sprintf("publish %s %s", evt.JobID, evt.Status))
	}
}

func (p *recordingPublisher) completed(jobID string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, evt := range p.events {
		if evt.Type == events.TypeCompleted && evt.JobID == jobID {
			out = append(out, evt)
		}
	}
	return out
}

func (p *recordingPublisher) progress(jobID string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, evt := range p.events {
		if evt.Type == events.TypeProgress && evt.JobID == jobID {
			out = append(out, evt)
		}
	}
	return out
}

type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

// memoryHistory records appends without touching disk.
type memoryHistory struct {
	mu      sync.Mutex
	root    string
	records []*queue.Job
	ops     *opLog
}

func (h *memoryHistory) Initialize(root string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := root != h.root
	h.root = root
	return changed, nil
}

func (h *memoryHistory) Append(_ context.Context, job *queue.Job) {
	h.mu.Lock()
	h.records = append(h.records, job.Clone())
	h.mu.Unlock()
	if h.ops != nil {
		h.ops.add(fmt.Sprintf("persist %s %s", job.ID, job.Status))
	}
}

func (h *memoryHistory) LoadAll(context.Context) (map[string]*queue.Job, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]*queue.Job)
	for _, job := range h.records {
		out[job.ID] = job.Clone()
	}
	return out, nil
}

func (h *memoryHistory) Root() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.root
}

func (h *memoryHistory) Enabled() bool { return true }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type harness struct {
	manager    *Manager
	launcher   *fakeLauncher
	terminator *fakeTerminator
	publisher  *recordingPublisher
	outputDir  string
}

type harnessOption func(*config.Config)

func withMaxConcurrent(n int) harnessOption {
	return func(cfg *config.Config) { cfg.Jobs.MaxConcurrent = n }
}

func withRoot(root string) harnessOption {
	return func(cfg *config.Config) { cfg.Paths.WorkflowRoot = root }
}

func newHarness(t *testing.T, store History, opts ...harnessOption) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Jobs.MaxConcurrent = 2
	for _, opt := range opts {
		opt(&cfg)
	}
	if store == nil {
		store = &memoryHistory{}
	}
	h := &harness{
		launcher:   newFakeLauncher(),
		terminator: &fakeTerminator{},
		publisher:  &recordingPublisher{},
		outputDir:  t.TempDir(),
	}
	seq := 0
	builder := engine.NewBuilder(engine.Tools{YtDlp: "yt-dlp", FFmpeg: "ffmpeg", ImageMagick: "magick"}, logging.NewNop())
	clock := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	h.manager = NewManager(&cfg, store, builder, h.publisher, logging.NewNop(),
		WithLauncher(h.launcher),
		WithTerminator(h.terminator),
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("job-%d", seq)
		}),
	)
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(h.manager.Stop)
	return h
}

func (h *harness) enqueueDownload(t *testing.T, url string) string {
	t.Helper()
	id, err := h.manager.Enqueue(context.Background(), Request{
		Kind:   engine.KindDownload,
		Engine: "yt-dlp",
		Input:  url,
		Output: h.outputDir,
	})
	if err != nil {
		t.Fatalf("Enqueue(%s): %v", url, err)
	}
	return id
}

func (h *harness) job(t *testing.T, id string) *queue.Job {
	t.Helper()
	job, ok := h.manager.Get(context.Background(), id)
	if !ok {
		t.Fatalf("job %s not found", id)
	}
	return job
}

func (h *harness) waitForStatus(t *testing.T, id string, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		job := h.job(t, id)
		if job.Status == want {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s status = %s, want %s", id, job.Status, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func statuses(jobs []*queue.Job) []string {
	out := make([]string, len(jobs))
	for i, job := range jobs {
		out[i] = job.ID + ":" + string(job.Status)
	}
	return out
}

func newHistoryStore(t *testing.T) *history.Store {
	t.Helper()
	store := history.New(config.HistoryBackendJSONL, logging.NewNop())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var errSpawn = errors.New("exec: \"yt-dlp\": executable file not found in $PATH")
