package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mediajobs/internal/engine"
	"mediajobs/internal/queue"
	"mediajobs/internal/workflow"
)

func TestFromJob(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	started := created.Add(2 * time.Second)
	completed := started.Add(90 * time.Second)
	progress := 100.0
	message := "exited with code 1"
	job := &queue.Job{
		ID:           "abc",
		Kind:         engine.KindConvert,
		Engine:       engine.FFmpeg,
		Input:        "/in/a.mov",
		Status:       queue.StatusError,
		Progress:     &progress,
		CreatedAt:    created,
		StartedAt:    &started,
		CompletedAt:  &completed,
		ErrorMessage: &message,
		LogsTail:     []string{"frame=1"},
		Options:      engine.Options{Preset: "webm-vp9", ExtraArgs: []string{"-an"}},
	}

	dto := FromJob(job)
	if dto.Engine != "ffmpeg" || dto.Kind != "convert" || dto.Status != "error" {
		t.Fatalf("unexpected enums: %+v", dto)
	}
	if dto.CreatedAt != "2026-03-02T10:00:00.000Z" {
		t.Fatalf("createdAt = %q", dto.CreatedAt)
	}
	if dto.DurationSeconds != 90 {
		t.Fatalf("duration = %v", dto.DurationSeconds)
	}
	if dto.ErrorMessage != message || dto.Options.Preset != "webm-vp9" {
		t.Fatalf("unexpected dto %+v", dto)
	}

	*job.Progress = 5
	job.LogsTail[0] = "changed"
	if *dto.Progress != 100 || dto.LogsTail[0] != "frame=1" {
		t.Fatal("dto shares memory with the job")
	}
}

func TestFromJobUnknownProgressEncodesNull(t *testing.T) {
	dto := FromJob(&queue.Job{ID: "q", Status: queue.StatusQueued})
	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"progress":null`) {
		t.Fatalf("expected null progress, got %s", data)
	}
	if !strings.Contains(string(data), `"logsTail":[]`) {
		t.Fatalf("expected empty logs tail, got %s", data)
	}
}

func TestFromListingNeverNil(t *testing.T) {
	resp := FromListing(workflow.Listing{})
	if resp.Queue == nil || resp.History == nil {
		t.Fatal("expected empty slices")
	}
}

func TestEnqueueRequestConversion(t *testing.T) {
	req := EnqueueRequest{
		Kind:   " Download ",
		Engine: "yt-dlp",
		Input:  "https://example.com/v",
		Options: JobOptions{
			Preset:    " 720p ",
			Fragments: 4,
			ExtraArgs: []string{"--embed-subs"},
		},
	}
	got := req.WorkflowRequest()
	if got.Kind != engine.KindDownload {
		t.Fatalf("kind = %q", got.Kind)
	}
	if got.Options.Preset != "720p" || got.Options.Fragments != 4 || len(got.Options.ExtraArgs) != 1 {
		t.Fatalf("options = %+v", got.Options)
	}

	bogus := EnqueueRequest{Kind: "Upload", Engine: "yt-dlp"}.WorkflowRequest()
	if bogus.Kind != "upload" {
		t.Fatalf("unknown kind should pass through, got %q", bogus.Kind)
	}
}
