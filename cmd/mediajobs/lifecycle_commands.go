package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediajobs/internal/daemonctl"
)

const (
	startWaitTimeout = 10 * time.Second
	stopGracePeriod  = 15 * time.Second
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			opts := daemonctl.LaunchOptions{SocketPath: ctx.socketPath()}
			if ctx.configFlag != nil {
				opts.ConfigPath = strings.TrimSpace(*ctx.configFlag)
			}
			result, err := daemonctl.Start(opts.SocketPath, exe, opts, startWaitTimeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.AlreadyRunning {
				fmt.Fprintf(out, "Daemon already running (pid %d)\n", result.PID)
				return nil
			}
			fmt.Fprintf(out, "Daemon started (pid %d)\n", result.PID)
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pidPath := filepath.Join(cfg.Paths.LogDir, pidFileName)
			result, err := daemonctl.Stop(ctx.socketPath(), pidPath, stopGracePeriod)
			out := cmd.OutOrStdout()
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.Forced {
				fmt.Fprintf(out, "Daemon did not exit in %s; killed pid %d\n", stopGracePeriod, result.PID)
				return nil
			}
			fmt.Fprintf(out, "Daemon stopped (pid %d)\n", result.PID)
			return nil
		},
	}
}
