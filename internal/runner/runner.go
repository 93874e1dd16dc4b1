package runner

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"mediajobs/internal/proctree"
	"mediajobs/internal/services"
)

var execCommand = exec.Command

const maxLineBytes = 1024 * 1024

// Result is the outcome of a finished subprocess. At most one of Err, Signal
// and ExitCode is meaningful. ExitCode is nil when the platform reported none.
type Result struct {
	ExitCode *int
	Signal   string
	Err      error
}

// Process is a running subprocess.
type Process struct {
	cmd  *exec.Cmd
	pid  int
	done chan Result
}

// PID returns the operating system process id.
func (p *Process) PID() int {
	return p.pid
}

// Done delivers exactly one Result after all output lines were handed to the
// line callback.
func (p *Process) Done() <-chan Result {
	return p.done
}

// Start launches path with stdin closed. onLine is called for every line of
// stdout and stderr, from two goroutines; lines split on \n or \r so carriage
// return progress updates arrive individually.
func Start(path string, args []string, onLine func(string)) (*Process, error) {
	cmd := execCommand(path, args...) //nolint:gosec
	cmd.Stdin = nil
	proctree.Prepare(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "runner", "stdout pipe", path, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "runner", "stderr pipe", path, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "runner", "start", path, err)
	}

	p := &Process{cmd: cmd, pid: cmd.Process.Pid, done: make(chan Result, 1)}
	forward := func(line string) {
		if onLine != nil {
			onLine(line)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go scan(&wg, stdout, forward)
	go scan(&wg, stderr, forward)

	go func() {
		wg.Wait()
		p.done <- resultFrom(cmd.Wait(), cmd.ProcessState)
		close(p.done)
	}()
	return p, nil
}

func scan(wg *sync.WaitGroup, r io.Reader, forward func(string)) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(splitByNewlineOrCR)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			forward(line)
		}
	}
	if scanner.Err() != nil {
		// Keep the pipe drained so the child never blocks on a full buffer.
		_, _ = io.Copy(io.Discard, r)
	}
}

func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func resultFrom(waitErr error, state *os.ProcessState) Result {
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Result{Err: services.Wrap(services.ErrExternalTool, "runner", "wait", "", waitErr)}
		}
	}
	if state == nil {
		return Result{}
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return Result{Signal: status.Signal().String()}
	}
	code := state.ExitCode()
	if code < 0 {
		return Result{}
	}
	return Result{ExitCode: &code}
}
