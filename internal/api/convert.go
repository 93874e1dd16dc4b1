package api

import (
	"strings"
	"time"

	"mediajobs/internal/engine"
	"mediajobs/internal/queue"
	"mediajobs/internal/workflow"
)

// FromJob converts a queue job to its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:       job.ID,
		Kind:     string(job.Kind),
		Engine:   string(job.Engine),
		Input:    job.Input,
		Output:   job.Output,
		Status:   string(job.Status),
		LogsTail: append([]string{}, job.LogsTail...),
		Options:  FromOptions(job.Options),
	}
	if job.Progress != nil {
		v := *job.Progress
		dto.Progress = &v
	}
	if job.ErrorMessage != nil {
		dto.ErrorMessage = *job.ErrorMessage
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = formatTime(job.CreatedAt)
	}
	if job.StartedAt != nil {
		dto.StartedAt = formatTime(*job.StartedAt)
		if job.CompletedAt != nil {
			dto.DurationSeconds = job.CompletedAt.Sub(*job.StartedAt).Seconds()
		}
	}
	if job.CompletedAt != nil {
		dto.CompletedAt = formatTime(*job.CompletedAt)
	}
	return dto
}

// FromJobs converts a slice of jobs, never returning nil.
func FromJobs(jobs []*queue.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		out = append(out, FromJob(job))
	}
	return out
}

// FromListing converts the workflow listing.
func FromListing(listing workflow.Listing) ListResponse {
	return ListResponse{
		Queue:   FromJobs(listing.Queue),
		History: FromJobs(listing.History),
	}
}

// FromStatusSummary converts workflow diagnostics.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	return WorkflowStatus(summary)
}

// FromOptions converts engine options.
func FromOptions(opts engine.Options) JobOptions {
	return JobOptions{
		Preset:             opts.Preset,
		CookiesFile:        opts.CookiesFile,
		CookiesFromBrowser: opts.CookiesFromBrowser,
		RateLimit:          opts.RateLimit,
		Proxy:              opts.Proxy,
		Fragments:          opts.Fragments,
		Resolution:         opts.Resolution,
		Quality:            opts.Quality,
		Audio:              opts.Audio,
		ExtraArgs:          append([]string(nil), opts.ExtraArgs...),
	}
}

// EngineOptions converts the wire options back into engine options.
func (o JobOptions) EngineOptions() engine.Options {
	return engine.Options{
		Preset:             strings.TrimSpace(o.Preset),
		CookiesFile:        strings.TrimSpace(o.CookiesFile),
		CookiesFromBrowser: strings.TrimSpace(o.CookiesFromBrowser),
		RateLimit:          strings.TrimSpace(o.RateLimit),
		Proxy:              strings.TrimSpace(o.Proxy),
		Fragments:          o.Fragments,
		Resolution:         strings.TrimSpace(o.Resolution),
		Quality:            strings.TrimSpace(o.Quality),
		Audio:              strings.TrimSpace(o.Audio),
		ExtraArgs:          append([]string(nil), o.ExtraArgs...),
	}
}

// WorkflowRequest converts an enqueue payload. An unrecognized kind is passed
// through so the manager rejects it as a mismatch.
func (r EnqueueRequest) WorkflowRequest() workflow.Request {
	kind := engine.Kind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if parsed, ok := engine.ParseKind(r.Kind); ok {
		kind = parsed
	}
	return workflow.Request{
		Kind:    kind,
		Engine:  r.Engine,
		Input:   r.Input,
		Output:  r.Output,
		Options: r.Options.EngineOptions(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dateTimeFormat)
}
