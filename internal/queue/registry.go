package queue

import (
	"sort"
	"time"
)

// Handle is the live subprocess behind a running job.
type Handle interface {
	PID() int
}

type entry struct {
	job    *Job
	seq    uint64
	handle Handle
}

// Registry is the in-memory job table. Jobs stored here are owned by the
// registry; callers that hand them out must Clone first.
type Registry struct {
	entries map[string]*entry
	nextSeq uint64
}

// NewRegistry returns an empty table.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Add inserts job. Re-adding an existing id replaces the record but keeps
// its original insertion order.
func (r *Registry) Add(job *Job) {
	if job == nil {
		return
	}
	if existing, ok := r.entries[job.ID]; ok {
		existing.job = job
		return
	}
	r.nextSeq++
	r.entries[job.ID] = &entry{job: job, seq: r.nextSeq}
}

// Get returns the job for id.
func (r *Registry) Get(id string) (*Job, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.job, true
}

// Len returns the number of known jobs.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Reset drops every job and handle.
func (r *Registry) Reset() {
	r.entries = make(map[string]*entry)
	r.nextSeq = 0
}

// Load replaces the table with jobs. Insertion order follows CreatedAt, then id,
// so FIFO promotion survives a reload.
func (r *Registry) Load(jobs map[string]*Job) {
	r.Reset()
	ordered := make([]*Job, 0, len(jobs))
	for _, job := range jobs {
		if job != nil {
			ordered = append(ordered, job)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, job := range ordered {
		r.Add(job)
	}
}

// QueuedOldestFirst returns queued jobs in FIFO order.
func (r *Registry) QueuedOldestFirst() []*Job {
	return r.filter(func(job *Job) bool { return job.Status == StatusQueued })
}

// Running returns running jobs in FIFO order.
func (r *Registry) Running() []*Job {
	return r.filter(func(job *Job) bool { return job.Status == StatusRunning })
}

// Active returns queued and running jobs ordered by creation time ascending.
func (r *Registry) Active() []*Job {
	return r.filter(func(job *Job) bool { return !job.IsTerminal() })
}

// CountRunning returns the number of jobs in the running state.
func (r *Registry) CountRunning() int {
	count := 0
	for _, e := range r.entries {
		if e.job.Status == StatusRunning {
			count++
		}
	}
	return count
}

// CountQueued returns the number of jobs waiting for a slot.
func (r *Registry) CountQueued() int {
	count := 0
	for _, e := range r.entries {
		if e.job.Status == StatusQueued {
			count++
		}
	}
	return count
}

// RecentTerminal returns up to n finished jobs, most recently completed first.
func (r *Registry) RecentTerminal(n int) []*Job {
	done := r.filter(func(job *Job) bool { return job.IsTerminal() })
	sort.SliceStable(done, func(i, j int) bool {
		return completionTime(done[i]).After(completionTime(done[j]))
	})
	if n >= 0 && len(done) > n {
		done = done[:n]
	}
	return done
}

// SetHandle attaches the live subprocess to a job.
func (r *Registry) SetHandle(id string, handle Handle) {
	if e, ok := r.entries[id]; ok {
		e.handle = handle
	}
}

// Handle returns the live subprocess for a job, if any.
func (r *Registry) Handle(id string) (Handle, bool) {
	e, ok := r.entries[id]
	if !ok || e.handle == nil {
		return nil, false
	}
	return e.handle, true
}

// ClearHandle forgets the subprocess for a job.
func (r *Registry) ClearHandle(id string) {
	if e, ok := r.entries[id]; ok {
		e.handle = nil
	}
}

func (r *Registry) filter(keep func(*Job) bool) []*Job {
	selected := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e.job) {
			selected = append(selected, e)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.job.CreatedAt.Equal(b.job.CreatedAt) {
			return a.job.CreatedAt.Before(b.job.CreatedAt)
		}
		return a.seq < b.seq
	})
	out := make([]*Job, len(selected))
	for i, e := range selected {
		out[i] = e.job
	}
	return out
}

// completionTime falls back to CreatedAt for terminal records written
// without a completion stamp.
func completionTime(job *Job) time.Time {
	if job.CompletedAt != nil {
		return *job.CompletedAt
	}
	return job.CreatedAt
}
