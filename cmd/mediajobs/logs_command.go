package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"mediajobs/internal/logging"
	"mediajobs/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var jobID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the daemon log",
		Long: "Print the tail of the daemon log file.\n\n" +
			"--job keeps only lines that mention the given job id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			filter := strings.TrimSpace(jobID)
			out := cmd.OutOrStdout()
			emit := func(line string) {
				if filter == "" || strings.Contains(line, filter) {
					fmt.Fprintln(out, line)
				}
			}

			limit := lines
			if filter != "" && limit > 0 {
				// Read a wider window so the filter still has lines to keep.
				limit *= 20
			}
			tail, offset, err := logs.Last(path, limit)
			if err != nil {
				return err
			}
			kept := tail
			if filter != "" {
				kept = kept[:0]
				for _, line := range tail {
					if strings.Contains(line, filter) {
						kept = append(kept, line)
					}
				}
				if len(kept) > lines {
					kept = kept[len(kept)-lines:]
				}
			}
			for _, line := range kept {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return logs.Follow(followCtx, path, offset, 0, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&jobID, "job", "", "Only show lines mentioning this job id")
	return cmd
}
