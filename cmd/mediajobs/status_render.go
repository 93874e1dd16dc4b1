package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mediajobs/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

var statusKindStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusKindStyles[kind]
	statusText := fmt.Sprintf("[%s]", style.label)
	if message != "" {
		statusText += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize && style.color != "" {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		return []string{ansiBlue + line + ansiReset, ansiBlue + rule + ansiReset}
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderDaemonStatus(status api.DaemonStatus, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	if status.Running {
		lines = append(lines, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusWarn, "not running", colorize))
	}
	if status.LockFilePath != "" {
		lines = append(lines, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
	}
	if status.EventsChannel != "" {
		lines = append(lines, renderStatusLine("Redis channel", statusInfo, status.EventsChannel, colorize))
	}
	if status.Running {
		lines = append(lines, renderStatusLine("Subscribers", statusInfo, fmt.Sprintf("%d", status.Subscribers), colorize))
	}

	wf := status.Workflow
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Workflow", colorize)...)
	switch {
	case wf.Root == "":
		lines = append(lines, renderStatusLine("Root", statusWarn, "not set; history is memory-only", colorize))
	case !status.Running:
		lines = append(lines, renderStatusLine("Root", statusInfo, wf.Root, colorize))
	case !wf.Persistent:
		lines = append(lines, renderStatusLine("Root", statusWarn, wf.Root+" (history unavailable)", colorize))
	default:
		lines = append(lines, renderStatusLine("Root", statusOK, wf.Root, colorize))
	}
	if status.HistoryPath != "" {
		lines = append(lines, renderStatusLine("History", statusInfo, status.HistoryPath, colorize))
	}
	lines = append(lines,
		renderStatusLine("Running", statusInfo, fmt.Sprintf("%d of %d slots", wf.RunningJobs, wf.MaxConcurrent), colorize),
		renderStatusLine("Queued", statusInfo, fmt.Sprintf("%d", wf.QueuedJobs), colorize),
		renderStatusLine("Known jobs", statusInfo, fmt.Sprintf("%d", wf.TotalJobs), colorize),
	)

	if len(status.Dependencies) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
		for _, dep := range status.Dependencies {
			lines = append(lines, renderDependencyLine(dep, colorize))
		}
	}
	if len(status.Preflight) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Preflight", colorize)...)
		for _, check := range status.Preflight {
			kind := statusOK
			if !check.Passed {
				kind = statusError
			}
			lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
		}
	}
	return lines
}

func renderDependencyLine(dep api.DependencyStatus, colorize bool) string {
	if dep.Available {
		return renderStatusLine(dep.Name, statusOK, dep.Detail, colorize)
	}
	kind := statusError
	if dep.Optional {
		kind = statusWarn
	}
	message := dep.Detail
	if message == "" {
		message = "not found: " + dep.Command
	}
	return renderStatusLine(dep.Name, kind, message, colorize)
}
