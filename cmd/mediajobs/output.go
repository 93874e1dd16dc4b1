package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediajobs/internal/api"
)

var titleCaser = cases.Title(language.Und)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "Unknown"
	}
	return titleCaser.String(status)
}

func statusKindFor(status string) statusKind {
	switch strings.ToLower(status) {
	case "success":
		return statusOK
	case "error":
		return statusError
	case "canceled":
		return statusWarn
	default:
		return statusInfo
	}
}

func formatProgress(progress *float64) string {
	if progress == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *progress)
}

func formatTimestamp(value string) string {
	if value == "" {
		return "-"
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}

func jobRows(jobs []api.Job, finished bool) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		row := []string{
			job.ID,
			job.Engine,
			statusLabel(job.Status),
			formatProgress(job.Progress),
			truncate(job.Input, 48),
		}
		if finished {
			row = append(row, formatTimestamp(job.CompletedAt), truncate(job.ErrorMessage, 40))
		} else {
			row = append(row, formatTimestamp(job.CreatedAt))
		}
		rows = append(rows, row)
	}
	return rows
}

func renderListing(resp *api.ListResponse) string {
	queue := tableSpec{
		title:       "Queue",
		headers:     []string{"ID", "Engine", "Status", "Progress", "Input", "Created"},
		aligns:      []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		rows:        jobRows(resp.Queue, false),
		placeholder: "No active jobs",
	}
	history := tableSpec{
		title:       "History",
		headers:     []string{"ID", "Engine", "Status", "Progress", "Input", "Completed", "Error"},
		aligns:      []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
		rows:        jobRows(resp.History, true),
		placeholder: "No finished jobs",
	}
	return queue.render() + "\n\n" + history.render()
}

func renderJobDetail(job api.Job, colorize bool) []string {
	lines := []string{
		renderStatusLine("Status", statusKindFor(job.Status), statusLabel(job.Status), colorize),
		renderStatusLine("ID", statusInfo, job.ID, colorize),
		renderStatusLine("Kind", statusInfo, job.Kind, colorize),
		renderStatusLine("Engine", statusInfo, job.Engine, colorize),
		renderStatusLine("Input", statusInfo, job.Input, colorize),
	}
	if job.Output != "" {
		lines = append(lines, renderStatusLine("Output", statusInfo, job.Output, colorize))
	}
	if job.Options.Preset != "" {
		lines = append(lines, renderStatusLine("Preset", statusInfo, job.Options.Preset, colorize))
	}
	lines = append(lines,
		renderStatusLine("Progress", statusInfo, formatProgress(job.Progress), colorize),
		renderStatusLine("Created", statusInfo, formatTimestamp(job.CreatedAt), colorize),
		renderStatusLine("Started", statusInfo, formatTimestamp(job.StartedAt), colorize),
		renderStatusLine("Completed", statusInfo, formatTimestamp(job.CompletedAt), colorize),
		renderStatusLine("Duration", statusInfo, formatDuration(job.DurationSeconds), colorize),
	)
	if job.ErrorMessage != "" {
		lines = append(lines, renderStatusLine("Error", statusError, job.ErrorMessage, colorize))
	}
	if len(job.LogsTail) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Output tail", colorize)...)
		for _, line := range job.LogsTail {
			lines = append(lines, statusIndent+line)
		}
	}
	return lines
}
