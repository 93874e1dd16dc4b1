package ipc

import "mediajobs/internal/api"

// ServiceName is the RPC service the server registers.
const ServiceName = "MediaJobs"

// Job mirrors the HTTP API job DTO for IPC callers.
type Job = api.Job

// EnqueueRequest queues a job.
type EnqueueRequest = api.EnqueueRequest

// EnqueueResponse returns the queued job id.
type EnqueueResponse = api.EnqueueResponse

// CancelRequest cancels one job.
type CancelRequest struct {
	ID string `json:"id"`
}

// CancelResponse reports whether the job changed state.
type CancelResponse = api.CancelResponse

// CancelAllRequest cancels every active job.
type CancelAllRequest struct{}

// CancelAllResponse reports how many jobs were canceled.
type CancelAllResponse = api.CancelAllResponse

// ListRequest fetches the queue and history.
type ListRequest struct{}

// ListResponse contains the queue and recent history.
type ListResponse = api.ListResponse

// DescribeRequest fetches a single job by id.
type DescribeRequest struct {
	ID string `json:"id"`
}

// DescribeResponse contains a single job.
type DescribeResponse = api.JobResponse

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and workflow status.
type StatusResponse = api.DaemonStatus

// SetRootRequest switches the workflow root.
type SetRootRequest = api.SetRootRequest

// SetRootResponse reports the expanded root now in use.
type SetRootResponse struct {
	Root string `json:"root"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
