package ipc_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"mediajobs/internal/config"
	"mediajobs/internal/daemon"
	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/history"
	"mediajobs/internal/ipc"
	"mediajobs/internal/logging"
	"mediajobs/internal/testsupport"
	"mediajobs/internal/workflow"
)

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	store := history.New(cfg.History.Backend, logger)
	hub := events.NewHub()
	builder := engine.NewBuilder(engine.Tools{
		YtDlp:       cfg.Tools.YtDlp,
		FFmpeg:      cfg.Tools.FFmpeg,
		ImageMagick: cfg.Tools.ImageMagick,
	}, logger)
	mgr := workflow.NewManager(cfg, store, builder, hub, logger)
	d, err := daemon.New(cfg, store, mgr, hub, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutAPI(), testsupport.WithStubbedBinaries())
	logger := logging.NewNop()
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	srv, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	client, err := ipc.Dial(cfg.SocketPath())
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("expected daemon to be running: %+v", status)
	}

	if _, err := client.Enqueue(ipc.EnqueueRequest{Engine: "bogus", Input: "x"}); err == nil {
		t.Fatal("expected validation error for unknown engine")
	}

	created, err := client.Enqueue(ipc.EnqueueRequest{
		Engine: "ffmpeg",
		Input:  testsupport.BaseDir(cfg) + "/clip.mov",
	})
	if err != nil {
		t.Fatalf("Enqueue RPC failed: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	var described *ipc.DescribeResponse
	for {
		described, err = client.Describe(created.ID)
		if err != nil {
			t.Fatalf("Describe RPC failed: %v", err)
		}
		if described.Job.Status == "success" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish: %+v", described.Job)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if described.Job.Engine != "ffmpeg" || described.Job.Kind != "convert" {
		t.Fatalf("unexpected job %+v", described.Job)
	}

	list, err := client.List()
	if err != nil {
		t.Fatalf("List RPC failed: %v", err)
	}
	if len(list.Queue) != 0 || len(list.History) != 1 {
		t.Fatalf("unexpected listing %+v", list)
	}

	if _, err := client.Describe("missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}

	canceled, err := client.Cancel(created.ID)
	if err != nil {
		t.Fatalf("Cancel RPC failed: %v", err)
	}
	if canceled.Canceled {
		t.Fatal("finished job must not be canceled")
	}

	all, err := client.CancelAll()
	if err != nil {
		t.Fatalf("CancelAll RPC failed: %v", err)
	}
	if all.Canceled != 0 {
		t.Fatalf("CancelAll = %d", all.Canceled)
	}

	next := t.TempDir()
	root, err := client.SetRoot(next)
	if err != nil {
		t.Fatalf("SetRoot RPC failed: %v", err)
	}
	if root.Root != next {
		t.Fatalf("root = %q", root.Root)
	}
	list, err = client.List()
	if err != nil {
		t.Fatalf("List after SetRoot: %v", err)
	}
	if len(list.History) != 0 {
		t.Fatalf("new root should start empty, got %d", len(list.History))
	}

	notify, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification RPC failed: %v", err)
	}
	if notify.Sent {
		t.Fatal("no topic configured; nothing should be sent")
	}
}

func TestIPCDaemonStopped(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutAPI())
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(cfg.SocketPath())
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	defer client.Close()

	if _, err := client.List(); err == nil || !strings.Contains(err.Error(), "not running") {
		t.Fatalf("List on stopped daemon = %v", err)
	}
	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.Running {
		t.Fatal("daemon should report stopped")
	}
}
