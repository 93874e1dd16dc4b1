package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediajobs/internal/queue"
)

//go:embed schema.sql
var schemaSQL string

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

type sqliteBackend struct {
	db     *sql.DB
	dbPath string
}

func openSQLite(path string) (*sqliteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &sqliteBackend{db: db, dbPath: path}, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (b *sqliteBackend) append(ctx context.Context, job *queue.Job) error {
	ctx = ensureContext(ctx)
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	recordedAt := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnBusy(ctx, func() error {
		_, execErr := b.db.ExecContext(ctx,
			`INSERT INTO job_revisions (job_id, status, recorded_at, record) VALUES (?, ?, ?, ?)`,
			job.ID, string(job.Status), recordedAt, string(data))
		if execErr != nil {
			return fmt.Errorf("insert revision for %s: %w", job.ID, execErr)
		}
		return nil
	})
}

func (b *sqliteBackend) loadAll(ctx context.Context) (map[string]*queue.Job, int, error) {
	ctx = ensureContext(ctx)
	jobs := make(map[string]*queue.Job)
	rows, err := b.db.QueryContext(ctx, `SELECT record FROM job_revisions ORDER BY seq`)
	if err != nil {
		return jobs, 0, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	skipped := 0
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			skipped++
			continue
		}
		if job, ok := decodeRecord([]byte(record)); ok {
			jobs[job.ID] = job
		} else {
			skipped++
		}
	}
	if err := rows.Err(); err != nil {
		return jobs, skipped, fmt.Errorf("iterate revisions: %w", err)
	}
	return jobs, skipped, nil
}

func (b *sqliteBackend) path() string {
	return b.dbPath
}

func (b *sqliteBackend) close() error {
	return b.db.Close()
}
