package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediajobs/internal/api"
	"mediajobs/internal/daemon"
	"mediajobs/internal/ipc"
	"mediajobs/internal/preflight"
	"mediajobs/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, workflow, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := fetchStatus(cmd, ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			for _, line := range renderDaemonStatus(status, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	return cmd
}

// fetchStatus asks the daemon for its status and falls back to local checks
// when the socket is unreachable.
func fetchStatus(cmd *cobra.Command, ctx *commandContext) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Status()
		if err != nil {
			return err
		}
		status = *resp
		return nil
	})
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, errDaemonUnavailable) {
		return status, err
	}

	cfg, cfgErr := ctx.ensureConfig()
	if cfgErr != nil {
		return status, cfgErr
	}
	local := daemon.Status{
		LockFilePath: cfg.LockPath(),
		Workflow: workflow.StatusSummary{
			Root:          cfg.Paths.WorkflowRoot,
			MaxConcurrent: cfg.Jobs.MaxConcurrent,
		},
		Dependencies: preflight.CheckSystemDeps(cfg),
		Preflight:    preflight.RunAll(cmd.Context(), cfg),
	}
	return local.API(), nil
}
