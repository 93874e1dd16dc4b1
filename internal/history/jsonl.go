package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"mediajobs/internal/queue"
)

type jsonlBackend struct {
	file     *os.File
	filePath string
}

func openJSONL(path string) (*jsonlBackend, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}
	if err := terminatePartialLine(file); err != nil {
		_ = file.Close()
		return nil, err
	}
	return &jsonlBackend{file: file, filePath: path}, nil
}

// terminatePartialLine starts a fresh line when a previous crash left the
// last record unterminated, so the next append stays parseable.
func terminatePartialLine(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat history log: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("read history tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := file.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("terminate partial record: %w", err)
	}
	return nil
}

func (b *jsonlBackend) append(_ context.Context, job *queue.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	data = append(data, '\n')
	if _, err := b.file.Write(data); err != nil {
		return fmt.Errorf("append job %s: %w", job.ID, err)
	}
	if err := b.file.Sync(); err != nil {
		return fmt.Errorf("sync history log: %w", err)
	}
	return nil
}

func (b *jsonlBackend) loadAll(ctx context.Context) (map[string]*queue.Job, int, error) {
	jobs := make(map[string]*queue.Job)
	file, err := os.Open(b.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return jobs, 0, nil
	}
	if err != nil {
		return jobs, 0, fmt.Errorf("open history log: %w", err)
	}
	defer file.Close()

	skipped := 0
	reader := bufio.NewReader(file)
	for {
		if err := ctx.Err(); err != nil {
			return jobs, skipped, err
		}
		line, readErr := reader.ReadString('\n')
		if record := strings.TrimSpace(line); record != "" {
			if job, ok := decodeRecord([]byte(record)); ok {
				jobs[job.ID] = job
			} else {
				skipped++
			}
		}
		if errors.Is(readErr, io.EOF) {
			return jobs, skipped, nil
		}
		if readErr != nil {
			return jobs, skipped, fmt.Errorf("read history log: %w", readErr)
		}
	}
}

func (b *jsonlBackend) path() string {
	return b.filePath
}

func (b *jsonlBackend) close() error {
	return b.file.Close()
}

func decodeRecord(data []byte) (*queue.Job, bool) {
	var job queue.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false
	}
	if strings.TrimSpace(job.ID) == "" {
		return nil, false
	}
	status, ok := queue.ParseStatus(string(job.Status))
	if !ok {
		return nil, false
	}
	job.Status = status
	return &job, true
}
