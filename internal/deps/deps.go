package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"mediajobs/internal/config"
	"mediajobs/internal/engine"
)

// Requirement defines an external tool an engine relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ToolRequirements lists the binaries behind every runnable engine.
func ToolRequirements(tools config.Tools) []Requirement {
	return []Requirement{
		{
			Name:        string(engine.YtDlp),
			Command:     tools.YtDlp,
			Description: "Required for downloads",
		},
		{
			Name:        string(engine.FFmpeg),
			Command:     tools.FFmpeg,
			Description: "Required for audio and video conversion",
		},
		{
			Name:        string(engine.ImageMagick),
			Command:     tools.ImageMagick,
			Description: "Required for image conversion",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable, non-optional tools.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
