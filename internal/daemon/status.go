package daemon

import "mediajobs/internal/api"

// API converts the status into its wire representation.
func (s Status) API() api.DaemonStatus {
	out := api.DaemonStatus{
		Running:       s.Running,
		PID:           s.PID,
		LockFilePath:  s.LockFilePath,
		HistoryPath:   s.HistoryPath,
		EventsChannel: s.EventsChannel,
		Subscribers:   s.Subscribers,
		Workflow:      api.FromStatusSummary(s.Workflow),
		Dependencies:  make([]api.DependencyStatus, 0, len(s.Dependencies)),
		Preflight:     make([]api.PreflightCheck, 0, len(s.Preflight)),
	}
	for _, dep := range s.Dependencies {
		out.Dependencies = append(out.Dependencies, api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	for _, check := range s.Preflight {
		out.Preflight = append(out.Preflight, api.PreflightCheck{
			Name:   check.Name,
			Passed: check.Passed,
			Detail: check.Detail,
		})
	}
	return out
}
