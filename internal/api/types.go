package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a queue job in a transport-friendly format.
type Job struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Engine          string     `json:"engine"`
	Input           string     `json:"input"`
	Output          string     `json:"output,omitempty"`
	Status          string     `json:"status"`
	Progress        *float64   `json:"progress"`
	CreatedAt       string     `json:"createdAt,omitempty"`
	StartedAt       string     `json:"startedAt,omitempty"`
	CompletedAt     string     `json:"completedAt,omitempty"`
	DurationSeconds float64    `json:"durationSeconds,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	LogsTail        []string   `json:"logsTail"`
	Options         JobOptions `json:"options"`
}

// JobOptions mirrors the engine options carried by a job.
type JobOptions struct {
	Preset             string   `json:"preset,omitempty"`
	CookiesFile        string   `json:"cookiesFile,omitempty"`
	CookiesFromBrowser string   `json:"cookiesFromBrowser,omitempty"`
	RateLimit          string   `json:"rateLimit,omitempty"`
	Proxy              string   `json:"proxy,omitempty"`
	Fragments          int      `json:"fragments,omitempty"`
	Resolution         string   `json:"resolution,omitempty"`
	Quality            string   `json:"quality,omitempty"`
	Audio              string   `json:"audio,omitempty"`
	ExtraArgs          []string `json:"extraArgs,omitempty"`
}

// EnqueueRequest is the payload accepted by POST /api/jobs and the Enqueue RPC.
type EnqueueRequest struct {
	Kind    string     `json:"kind,omitempty"`
	Engine  string     `json:"engine"`
	Input   string     `json:"input"`
	Output  string     `json:"output,omitempty"`
	Options JobOptions `json:"options"`
}

// EnqueueResponse returns the id of the queued job.
type EnqueueResponse struct {
	ID string `json:"id"`
}

// ListResponse holds the active queue and recent history.
type ListResponse struct {
	Queue   []Job `json:"queue"`
	History []Job `json:"history"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// CancelResponse reports whether a cancel changed anything.
type CancelResponse struct {
	Canceled bool `json:"canceled"`
}

// CancelAllResponse reports how many jobs were canceled.
type CancelAllResponse struct {
	Canceled int `json:"canceled"`
}

// SetRootRequest points the daemon at a new workflow root.
type SetRootRequest struct {
	Root string `json:"root"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running       bool   `json:"running"`
	Root          string `json:"root"`
	Persistent    bool   `json:"persistent"`
	MaxConcurrent int    `json:"maxConcurrent"`
	RunningJobs   int    `json:"runningJobs"`
	QueuedJobs    int    `json:"queuedJobs"`
	TotalJobs     int    `json:"totalJobs"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// PreflightCheck reports a single directory access check.
type PreflightCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	LockFilePath  string             `json:"lockFilePath"`
	HistoryPath   string             `json:"historyPath,omitempty"`
	EventsChannel string             `json:"eventsChannel,omitempty"`
	Subscribers   int                `json:"subscribers"`
	Workflow      WorkflowStatus     `json:"workflow"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Preflight     []PreflightCheck   `json:"preflight"`
}

// ErrorResponse is returned by the HTTP API on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
