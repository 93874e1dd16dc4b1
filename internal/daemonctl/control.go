package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mediajobs/internal/ipc"
)

// ErrNotRunning indicates no daemon answers on the socket.
var ErrNotRunning = errors.New("daemon not running")

const pollInterval = 100 * time.Millisecond

// LaunchOptions controls how the detached daemon is invoked.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
}

// StartResult describes the outcome of Start.
type StartResult struct {
	AlreadyRunning bool
	PID            int
}

// StopResult describes the outcome of Stop.
type StopResult struct {
	PID    int
	Forced bool
}

// Launch starts `<executable> daemon` in its own session and returns without
// waiting for it.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("launch daemon: executable path is empty")
	}
	args := []string{"daemon"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient dials the socket until it answers or timeout elapses.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
		}
		time.Sleep(pollInterval)
	}
}

// Start launches the daemon unless one already answers on the socket.
func Start(socketPath, executablePath string, opts LaunchOptions, timeout time.Duration) (StartResult, error) {
	if client, err := ipc.Dial(socketPath); err == nil {
		defer client.Close()
		return StartResult{AlreadyRunning: true, PID: statusPID(client)}, nil
	}
	if opts.SocketPath == "" {
		opts.SocketPath = socketPath
	}
	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	client, err := WaitForClient(socketPath, timeout)
	if err != nil {
		return StartResult{}, err
	}
	defer client.Close()
	return StartResult{PID: statusPID(client)}, nil
}

// Stop sends SIGTERM to the daemon and escalates to SIGKILL when it is still
// answering after grace. pidPath is consulted when the daemon cannot report
// its own pid.
func Stop(socketPath, pidPath string, grace time.Duration) (StopResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return StopResult{}, ErrNotRunning
	}
	pid := statusPID(client)
	_ = client.Close()
	if pid <= 0 {
		if pid, err = ReadPIDFile(pidPath); err != nil {
			return StopResult{}, err
		}
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}

	result := StopResult{PID: pid}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return result, fmt.Errorf("signal daemon %d: %w", pid, err)
	}
	if waitForShutdown(socketPath, grace) {
		return result, nil
	}
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return result, fmt.Errorf("kill daemon %d: %w", pid, err)
	}
	_ = os.Remove(socketPath)
	_ = os.Remove(pidPath)
	result.Forced = true
	return result, nil
}

// ReadPIDFile parses the pid written by the foreground daemon.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid daemon pid file %q", path)
	}
	return pid, nil
}

func waitForShutdown(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		client, err := ipc.Dial(socketPath)
		if err != nil {
			return true
		}
		_ = client.Close()
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

func statusPID(client *ipc.Client) int {
	status, err := client.Status()
	if err != nil || status == nil {
		return 0
	}
	return status.PID
}
