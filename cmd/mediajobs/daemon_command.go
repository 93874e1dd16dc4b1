package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"mediajobs/internal/config"
	"mediajobs/internal/daemon"
	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/history"
	"mediajobs/internal/ipc"
	"mediajobs/internal/logging"
	"mediajobs/internal/workflow"
)

const pidFileName = "mediajobs.pid"

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the job supervisor in the foreground",
		Long: "Run the job supervisor in the foreground until interrupted.\n\n" +
			"The daemon serves the IPC socket, the HTTP API when api_bind is set, " +
			"and forwards job events to Redis and ntfy when configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx)
		},
	}
}

// buildDaemon wires the history store, event hub, command builder and job
// manager behind a single daemon.
func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	store := history.New(cfg.History.Backend, logger)
	hub := events.NewHub()
	builder := engine.NewBuilder(engine.Tools{
		YtDlp:       cfg.Tools.YtDlp,
		FFmpeg:      cfg.Tools.FFmpeg,
		ImageMagick: cfg.Tools.ImageMagick,
	}, logger)
	manager := workflow.NewManager(cfg, store, builder, hub, logger)
	d, err := daemon.New(cfg, store, manager, hub, logger)
	if err != nil {
		hub.Close()
		_ = store.Close()
		return nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, nil
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext) error {
	if ctx == nil {
		return fmt.Errorf("command context is required")
	}
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	d, err := buildDaemon(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	// The pid file belongs to the lock holder; a rejected second instance
	// must leave it alone.
	pidPath := filepath.Join(cfg.Paths.LogDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	socketPath := ctx.socketPath()
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("mediajobs daemon ready",
		logging.String("socket", socketPath),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.String(logging.FieldEventType, "daemon_ready"))

	<-signalCtx.Done()
	logger.Info("mediajobs daemon shutting down",
		logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
