package preflight

import (
	"context"
	"strings"

	"mediajobs/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)}

	// An empty workflow root means memory-only operation, which is valid.
	if root := strings.TrimSpace(cfg.Paths.WorkflowRoot); root != "" {
		results = append(results, CheckDirectoryAccess("Workflow root", root))
	}

	if strings.TrimSpace(cfg.Events.RedisURL) != "" {
		results = append(results, CheckRedis(ctx, cfg.Events.RedisURL))
	}

	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
