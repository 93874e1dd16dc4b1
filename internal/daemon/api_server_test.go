package daemon

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"mediajobs/internal/api"
	"mediajobs/internal/testsupport"
)

func TestAPIEnqueueRunsJobToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d := startTestDaemon(t, cfg)
	client := newAPIClient(t, d)

	var created api.EnqueueResponse
	code := client.do(t, http.MethodPost, "/api/jobs", api.EnqueueRequest{
		Engine: "yt-dlp",
		Input:  "https://example.com/watch?v=1",
		Output: t.TempDir(),
	}, &created)
	if code != http.StatusAccepted || created.ID == "" {
		t.Fatalf("enqueue status=%d id=%q", code, created.ID)
	}

	deadline := time.Now().Add(10 * time.Second)
	var job api.JobResponse
	for {
		if code := client.do(t, http.MethodGet, "/api/jobs/"+created.ID, nil, &job); code != http.StatusOK {
			t.Fatalf("get job status=%d", code)
		}
		if job.Job.Status == "success" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish: %+v", job.Job)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if job.Job.Progress == nil || *job.Job.Progress != 100 {
		t.Fatalf("progress = %v", job.Job.Progress)
	}
	if len(job.Job.LogsTail) == 0 || !strings.Contains(job.Job.LogsTail[0], "--newline") {
		t.Fatalf("expected stub output in logs tail, got %v", job.Job.LogsTail)
	}

	var listing api.ListResponse
	client.do(t, http.MethodGet, "/api/jobs", nil, &listing)
	if len(listing.History) != 1 || listing.History[0].ID != created.ID {
		t.Fatalf("history = %+v", listing.History)
	}
}

func TestAPIEnqueueValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startTestDaemon(t, cfg)
	client := newAPIClient(t, d)

	if code := client.do(t, http.MethodPost, "/api/jobs", api.EnqueueRequest{Engine: "handbrake", Input: "/a"}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown engine status = %d", code)
	}
	if code := client.do(t, http.MethodPost, "/api/jobs", map[string]string{"engine": "ffmpeg", "bogus": "x"}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d", code)
	}
	if code := client.do(t, http.MethodGet, "/api/jobs/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unknown job status = %d", code)
	}
}

func TestAPISpawnFailureAndCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startTestDaemon(t, cfg)
	client := newAPIClient(t, d)

	var created api.EnqueueResponse
	client.do(t, http.MethodPost, "/api/jobs", api.EnqueueRequest{Engine: "ffmpeg", Input: "/in/a.mov"}, &created)

	var job api.JobResponse
	client.do(t, http.MethodGet, "/api/jobs/"+created.ID, nil, &job)
	if job.Job.Status != "error" || !strings.Contains(job.Job.ErrorMessage, "failed to start") {
		t.Fatalf("job = %+v", job.Job)
	}

	var canceled api.CancelResponse
	client.do(t, http.MethodPost, "/api/jobs/"+created.ID+"/cancel", nil, &canceled)
	if canceled.Canceled {
		t.Fatal("finished job should not be canceled")
	}
	var all api.CancelAllResponse
	client.do(t, http.MethodPost, "/api/jobs/cancel-all", nil, &all)
	if all.Canceled != 0 {
		t.Fatalf("cancel-all = %d", all.Canceled)
	}
}

func TestAPITokenRequired(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIToken = "secret"
	d := startTestDaemon(t, cfg)
	client := newAPIClient(t, d)

	if code := client.do(t, http.MethodGet, "/api/status", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", code)
	}
	client.token = "secret"
	var status api.DaemonStatus
	if code := client.do(t, http.MethodGet, "/api/status", nil, &status); code != http.StatusOK {
		t.Fatalf("status with token = %d", code)
	}
	if !status.Running || status.Workflow.MaxConcurrent != cfg.Jobs.MaxConcurrent {
		t.Fatalf("status = %+v", status)
	}
}

func TestAPISetRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startTestDaemon(t, cfg)
	client := newAPIClient(t, d)

	next := t.TempDir()
	var workflow api.WorkflowStatus
	if code := client.do(t, http.MethodPut, "/api/root", api.SetRootRequest{Root: next}, &workflow); code != http.StatusOK {
		t.Fatalf("set root status = %d", code)
	}
	if workflow.Root != next {
		t.Fatalf("root = %q", workflow.Root)
	}
}
